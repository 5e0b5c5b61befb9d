package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fieldnotes/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubHTMLRender struct {
	lastName string
	lastData interface{}
}

type stubHTMLInstance struct {
	parent *stubHTMLRender
	name   string
	data   interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.lastName = name
	r.lastData = data
	return &stubHTMLInstance{parent: r, name: name, data: data}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func setupHandlerTest(t *testing.T) (*API, string, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{}, &db.Page{}, &db.Post{}, &db.Tag{},
		&db.SiteSetting{}, &db.PageVisitCounter{}, &db.PageDailyVisitor{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	db.DB = gdb

	contentDir := t.TempDir()
	api := NewAPI(gdb, contentDir, t.TempDir(), "/static/uploads")

	return api, contentDir, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// newHandlerRouter 组装一个带会话和 HTML 桩渲染的测试路由。
func newHandlerRouter() (*gin.Engine, *stubHTMLRender) {
	r := gin.New()
	stub := &stubHTMLRender{}
	r.HTMLRender = stub
	r.Use(sessions.Sessions("fieldnotes_session", cookie.NewStore([]byte("test-secret"))))
	return r, stub
}

func writeHandlerContent(t *testing.T, root, rel, data string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create content dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write content file: %v", err)
	}
}

func seedTestUser(t *testing.T, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := db.User{Username: username, Password: string(hash)}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
}

func TestLoginRedirectsToDashboard(t *testing.T) {
	_, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	seedTestUser(t, "root", "secret123")

	r, _ := newHandlerRouter()
	r.POST("/admin/login", Login)

	form := url.Values{"username": {"root"}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/dashboard" {
		t.Fatalf("expected redirect to /admin/dashboard, got %q", loc)
	}
	if cookieHeader := w.Header().Get("Set-Cookie"); !strings.Contains(cookieHeader, "fieldnotes_session") {
		t.Fatalf("expected session cookie to be set, got %q", cookieHeader)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	seedTestUser(t, "root", "secret123")

	r, stub := newHandlerRouter()
	r.POST("/admin/login", Login)

	form := url.Values{"username": {"root"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if stub.lastName != "login_error.html" {
		t.Fatalf("expected login_error.html, rendered %q", stub.lastName)
	}
}

func TestAuthRequiredRedirectsAnonymous(t *testing.T) {
	_, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	r, _ := newHandlerRouter()
	r.GET("/admin/dashboard", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Fatalf("expected redirect to /admin/login, got %q", loc)
	}
}

func TestShowDashboardCountsContent(t *testing.T) {
	api, contentDir, cleanup := setupHandlerTest(t)
	defer cleanup()

	writeHandlerContent(t, contentDir, "about.md",
		"---\nlayout: page\ntitle: About Me\npermalink: /about/\n---\nHello.\n")
	writeHandlerContent(t, contentDir, "_posts/2025-06-01-first.md",
		"---\nlayout: post\ntitle: First\ntags: [go]\n---\nBody.\n")
	if _, err := api.Sync().Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	r, stub := newHandlerRouter()
	r.GET("/admin/dashboard", api.ShowDashboard)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if stub.lastName != "dashboard.html" {
		t.Fatalf("expected dashboard.html, rendered %q", stub.lastName)
	}
	data, ok := stub.lastData.(gin.H)
	if !ok {
		t.Fatalf("unexpected template data type %T", stub.lastData)
	}
	if got := data["pageCount"]; got != int64(1) {
		t.Fatalf("expected pageCount 1, got %v", got)
	}
	if got := data["postCount"]; got != int64(1) {
		t.Fatalf("expected postCount 1, got %v", got)
	}
}
