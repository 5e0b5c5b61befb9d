package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fieldnotes/internal/db"
	"github.com/gin-gonic/gin"
)

func TestShowPageServesPermalink(t *testing.T) {
	api, contentDir, cleanup := setupHandlerTest(t)
	defer cleanup()

	syncAboutPage(t, api, contentDir)

	r, stub := newHandlerRouter()
	r.NoRoute(api.ShowPage)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if stub.lastName != "page.html" {
		t.Fatalf("expected page.html, rendered %q", stub.lastName)
	}
	data, ok := stub.lastData.(gin.H)
	if !ok {
		t.Fatalf("unexpected template data type %T", stub.lastData)
	}
	if got := data["title"]; got != "About Me" {
		t.Fatalf("expected title About Me, got %v", got)
	}
	if cookieHeader := w.Header().Get("Set-Cookie"); !strings.Contains(cookieHeader, "fn_visitor_id") {
		t.Fatalf("expected visitor cookie, got %q", cookieHeader)
	}
}

func TestShowPageTrailingSlashResolves(t *testing.T) {
	api, contentDir, cleanup := setupHandlerTest(t)
	defer cleanup()

	syncAboutPage(t, api, contentDir)

	r, _ := newHandlerRouter()
	r.NoRoute(api.ShowPage)

	req := httptest.NewRequest(http.MethodGet, "/about/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for trailing slash, got %d", w.Code)
	}
}

func TestShowPageUnknownPathIs404(t *testing.T) {
	api, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	r, stub := newHandlerRouter()
	r.NoRoute(api.ShowPage)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if stub.lastName != "not_found.html" {
		t.Fatalf("expected not_found.html, rendered %q", stub.lastName)
	}
}

func TestShowPostDetailHidesDrafts(t *testing.T) {
	api, contentDir, cleanup := setupHandlerTest(t)
	defer cleanup()

	writeHandlerContent(t, contentDir, "_posts/2025-06-01-published.md",
		"---\nlayout: post\ntitle: Published\n---\nVisible body.\n")
	writeHandlerContent(t, contentDir, "_posts/2025-06-02-hidden.md",
		"---\nlayout: post\ntitle: Hidden\ndraft: true\n---\nNot yet.\n")
	if _, err := api.Sync().Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	r, stub := newHandlerRouter()
	r.GET("/posts/:slug", api.ShowPostDetail)

	req := httptest.NewRequest(http.MethodGet, "/posts/published", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for published post, got %d", w.Code)
	}
	if stub.lastName != "post.html" {
		t.Fatalf("expected post.html, rendered %q", stub.lastName)
	}

	req = httptest.NewRequest(http.MethodGet, "/posts/hidden", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for draft post, got %d", w.Code)
	}
}

func TestGetActivityReportsRecentPosts(t *testing.T) {
	api, contentDir, cleanup := setupHandlerTest(t)
	defer cleanup()

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	writeHandlerContent(t, contentDir, "_posts/"+yesterday+"-fresh.md",
		"---\nlayout: post\ntitle: Fresh\n---\nBody.\n")
	if _, err := api.Sync().Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	r, _ := newHandlerRouter()
	r.GET("/api/activity", api.GetActivity)

	req := httptest.NewRequest(http.MethodGet, "/api/activity", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var payload struct {
		Verdict     string `json:"verdict"`
		RecentCount int    `json:"recentCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Verdict != "Nice!" {
		t.Fatalf("expected Nice! verdict for fresh post, got %q", payload.Verdict)
	}
	if payload.RecentCount != 1 {
		t.Fatalf("expected 1 recent post, got %d", payload.RecentCount)
	}
}

func TestRepeatVisitCountsOnce(t *testing.T) {
	api, contentDir, cleanup := setupHandlerTest(t)
	defer cleanup()

	syncAboutPage(t, api, contentDir)

	r, _ := newHandlerRouter()
	r.NoRoute(api.ShowPage)

	first := httptest.NewRequest(http.MethodGet, "/about", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, first)

	var visitorCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "fn_visitor_id" {
			visitorCookie = ck
		}
	}
	if visitorCookie == nil {
		t.Fatal("expected visitor cookie on first visit")
	}

	second := httptest.NewRequest(http.MethodGet, "/about", nil)
	second.AddCookie(visitorCookie)
	r.ServeHTTP(httptest.NewRecorder(), second)

	var counter db.PageVisitCounter
	if err := api.DB().Where("permalink = ?", "/about").First(&counter).Error; err != nil {
		t.Fatalf("expected visit counter row: %v", err)
	}
	if counter.Views != 1 {
		t.Fatalf("expected 1 unique view, got %d", counter.Views)
	}
}

func TestRenderMarkdownSanitizesHTML(t *testing.T) {
	out, err := renderMarkdown("# Hello\n\n<script>alert(1)</script>\n\nParagraph.")
	if err != nil {
		t.Fatalf("renderMarkdown failed: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1") {
		t.Fatalf("expected heading in output, got %q", html)
	}
	if strings.Contains(html, "<script") {
		t.Fatalf("expected script stripped, got %q", html)
	}
}

func TestLayoutTemplateFallsBack(t *testing.T) {
	tests := []struct {
		layout   string
		expected string
	}{
		{layout: "page", expected: "page.html"},
		{layout: "post", expected: "post.html"},
		{layout: "Default", expected: "default.html"},
		{layout: "fancy", expected: "page.html"},
		{layout: "", expected: "page.html"},
	}
	for _, tt := range tests {
		if got := layoutTemplate(tt.layout); got != tt.expected {
			t.Fatalf("layoutTemplate(%q) = %q, want %q", tt.layout, got, tt.expected)
		}
	}
}

func TestBuildQueryParams(t *testing.T) {
	if got := buildQueryParams("", nil); got != "" {
		t.Fatalf("expected empty params, got %q", got)
	}
	got := buildQueryParams("hello", []string{"go", " prose "})
	if !strings.HasPrefix(got, "&") {
		t.Fatalf("expected leading &, got %q", got)
	}
	if !strings.Contains(got, "search=hello") || !strings.Contains(got, "tags=go") || !strings.Contains(got, "tags=prose") {
		t.Fatalf("unexpected params %q", got)
	}
}

func TestRegisterLayoutTemplatesRebuildsWhitelist(t *testing.T) {
	defer RegisterLayoutTemplates([]string{"page.html", "post.html", "default.html"})

	RegisterLayoutTemplates([]string{
		"web/templates/page.html",
		"web/templates/gallery.html",
		"web/templates/dashboard.html",
	})

	if got := layoutTemplate("gallery"); got != "gallery.html" {
		t.Fatalf("expected registered layout to resolve, got %q", got)
	}
	if got := layoutTemplate("post"); got != "page.html" {
		t.Fatalf("expected unregistered layout to fall back to page.html, got %q", got)
	}

	// 空列表不应清掉现有白名单
	RegisterLayoutTemplates(nil)
	if got := layoutTemplate("gallery"); got != "gallery.html" {
		t.Fatalf("expected whitelist to survive empty registration, got %q", got)
	}
}
