package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fieldnotes/internal/service"
	"github.com/gin-gonic/gin"
)

type pageBodyPayload struct {
	Body string `json:"body"`
}

// ShowPageList renders the admin list of indexed content pages.
func (a *API) ShowPageList(c *gin.Context) {
	pages, err := a.pages.List()
	if err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "page_list.html", gin.H{
			"title": "页面管理",
			"error": "加载页面列表失败",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "page_list.html", gin.H{
		"title": "页面管理",
		"pages": pages,
	})
}

// ShowPageEditor renders the markdown editor for one page.
func (a *API) ShowPageEditor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.Redirect(http.StatusFound, "/admin/pages")
		return
	}

	page, err := a.pages.Get(id)
	if err != nil {
		status := http.StatusInternalServerError
		message := "加载页面失败，请稍后再试"
		if errors.Is(err, service.ErrPageNotFound) {
			status = http.StatusNotFound
			message = "页面不存在"
		}
		a.renderHTML(c, status, "page_edit.html", gin.H{
			"title": "编辑页面",
			"error": message,
		})
		return
	}

	var updatedAt string
	if !page.UpdatedAt.IsZero() {
		updatedAt = page.UpdatedAt.In(time.Local).Format("2006-01-02 15:04")
	}

	a.renderHTML(c, http.StatusOK, "page_edit.html", gin.H{
		"title":     page.Title,
		"page":      page,
		"body":      page.Body,
		"updatedAt": updatedAt,
	})
}

// UpdatePageBody saves an edited body back into the page's markdown source
// file, keeping its front matter untouched.
func (a *API) UpdatePageBody(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "页面编号不正确")
		return
	}

	var payload pageBodyPayload
	if !bindJSON(c, &payload, "内容格式不正确") {
		return
	}

	page, err := a.pages.UpdateBody(id, payload.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPageNotFound):
			respondError(c, http.StatusNotFound, "页面不存在")
		case errors.Is(err, service.ErrPageBodyMissing):
			respondError(c, http.StatusBadRequest, "请填写页面内容")
		case errors.Is(err, service.ErrPageSourceGone):
			respondError(c, http.StatusConflict, "页面源文件已被移除，请先同步内容")
		default:
			respondError(c, http.StatusInternalServerError, "保存失败，请稍后重试")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "页面已更新",
		"page": gin.H{
			"id":        page.ID,
			"permalink": page.Permalink,
			"body":      page.Body,
			"updatedAt": page.UpdatedAt.In(time.Local).Format("2006-01-02 15:04"),
		},
	})
}

// GetPages returns the indexed pages as JSON for the admin API.
func (a *API) GetPages(c *gin.Context) {
	pages, err := a.pages.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载页面列表失败")
		return
	}

	items := make([]gin.H, 0, len(pages))
	for _, page := range pages {
		items = append(items, gin.H{
			"id":        page.ID,
			"permalink": page.Permalink,
			"layout":    page.Layout,
			"title":     page.Title,
			"source":    page.SourcePath,
			"updatedAt": page.UpdatedAt.In(time.Local).Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"pages": items})
}
