package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldnotes/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

const (
	visitorCookieName   = "fn_visitor_id"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// knownLayouts 列出模板目录里真实存在的布局，未知布局回退到 page。
// 路由装载模板后会用 RegisterLayoutTemplates 替换成实际的模板名。
var knownLayouts = map[string]bool{
	"page":    true,
	"post":    true,
	"default": true,
}

// RegisterLayoutTemplates 用实际加载的模板文件名重建布局白名单。
func RegisterLayoutTemplates(paths []string) {
	if len(paths) == 0 {
		return
	}
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		name := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
		if name != "" {
			set[name] = true
		}
	}
	knownLayouts = set
}

// ShowHome renders the public home page: published posts, newest first,
// with tag and search filters.
func (a *API) ShowHome(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	tags := c.QueryArray("tags")
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)

	filter := service.PostFilter{
		Search:   search,
		TagNames: tags,
		Page:     page,
		PerPage:  6,
	}

	posts, err := a.posts.List(filter)
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "home.html", gin.H{
			"title": "首页",
			"error": "获取文章失败",
			"year":  time.Now().Year(),
		})
		return
	}

	tagOptions, err := a.tags.Usage()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":       "首页",
		"search":      search,
		"tags":        tags,
		"tagOptions":  tagOptions,
		"posts":       posts.Posts,
		"page":        posts.Page,
		"totalPages":  posts.TotalPages,
		"hasMore":     posts.Page < posts.TotalPages,
		"queryParams": buildQueryParams(search, tags),
		"year":        time.Now().Year(),
	})
}

// ShowPage serves a content page addressed by its permalink. It is mounted
// as the NoRoute fallback so authors can claim arbitrary site paths.
func (a *API) ShowPage(c *gin.Context) {
	requestPath := c.Request.URL.Path

	page, err := a.pages.GetByPermalink(requestPath)
	if err != nil {
		a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
			"title": "页面不存在",
			"path":  requestPath,
			"year":  time.Now().Year(),
		})
		return
	}

	views := a.recordVisit(c, page.Permalink)

	content, err := renderMarkdown(page.Body)
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, layoutTemplate(page.Layout), gin.H{
			"title": page.Title,
			"error": "渲染内容失败",
			"year":  time.Now().Year(),
		})
		return
	}

	a.renderHTML(c, http.StatusOK, layoutTemplate(page.Layout), gin.H{
		"title":     page.Title,
		"page":      page,
		"content":   content,
		"pageViews": views,
		"year":      time.Now().Year(),
	})
}

// ShowPostDetail renders a single published post with markdown content.
func (a *API) ShowPostDetail(c *gin.Context) {
	slug := c.Param("slug")

	post, err := a.posts.GetBySlug(slug)
	if err != nil || post.Draft {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	views := a.recordVisit(c, post.Permalink)

	content, err := renderMarkdown(post.Body)
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, layoutTemplate(post.Layout), gin.H{
			"title": "文章详情",
			"error": "渲染内容失败",
			"year":  time.Now().Year(),
		})
		return
	}

	a.renderHTML(c, http.StatusOK, layoutTemplate(post.Layout), gin.H{
		"title":     post.Title,
		"post":      post,
		"content":   content,
		"pageViews": views,
		"year":      time.Now().Year(),
	})
}

// ShowTagArchive lists tags with published post counts.
func (a *API) ShowTagArchive(c *gin.Context) {
	stats, err := a.tags.Usage()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "tag_list.html", gin.H{
		"title": "标签",
		"tags":  stats,
		"year":  time.Now().Year(),
	})
}

// GetActivity returns the posting-recency summary as JSON.
func (a *API) GetActivity(c *gin.Context) {
	summary, err := a.activity.Summary(time.Now().UTC())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取发文统计失败")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (a *API) recordVisit(c *gin.Context, permalink string) uint64 {
	visitorID := a.ensureVisitorID(c)
	views, err := a.visits.RecordVisit(permalink, visitorID, time.Now().UTC())
	if err != nil {
		c.Error(err) // 不中断渲染，但记录错误
		return 0
	}
	return views
}

func (a *API) ensureVisitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookieName); err == nil && strings.TrimSpace(id) != "" {
		return id
	}

	visitorID := uuid.NewString()
	secure := c.Request.TLS != nil

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     visitorCookieName,
		Value:    visitorID,
		Path:     "/",
		MaxAge:   visitorCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return visitorID
}

func layoutTemplate(layout string) string {
	name := strings.TrimSpace(strings.ToLower(layout))
	if !knownLayouts[name] {
		name = "page"
	}
	return name + ".html"
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

func buildQueryParams(search string, tags []string) string {
	values := url.Values{}
	if search != "" {
		values.Set("search", search)
	}
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			values.Add("tags", trimmed)
		}
	}
	encoded := values.Encode()
	if encoded == "" {
		return ""
	}
	return "&" + encoded
}
