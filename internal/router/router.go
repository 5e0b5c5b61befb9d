package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldnotes/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由。
// templateGlob 为空时跳过模板加载，方便只测试 JSON 接口。
func SetupRouter(api *handler.API, sessionSecret, uploadDir, uploadURL, templateGlob string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("fieldnotes_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"eq": func(a, b interface{}) bool {
			return a == b
		},
		"relativeTime": func(t time.Time) string {
			return formatRelativeTime(time.Now(), t)
		},
	})
	if templateGlob != "" {
		r.LoadHTMLGlob(templateGlob)
		if names, err := filepath.Glob(templateGlob); err == nil {
			handler.RegisterLayoutTemplates(names)
		}
	}

	// 静态文件服务
	r.Static("/static", "./web/static")
	if uploadDir != "" {
		r.Static("/uploads", uploadDir)
		if uploadURL != "" && uploadURL != "/uploads" && !strings.HasPrefix(uploadURL, "/static") {
			r.Static(uploadURL, uploadDir)
		}
	}

	r.GET("/healthz", api.HealthCheck)

	// 公开路由
	r.GET("/", api.ShowHome)
	r.GET("/posts/:slug", api.ShowPostDetail)
	r.GET("/tags", api.ShowTagArchive)
	r.GET("/api/activity", api.GetActivity)

	// 其余路径交给页面 permalink 查找
	r.NoRoute(api.ShowPage)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", handler.ShowLoginPage)
		admin.POST("/login", handler.Login)
		admin.GET("/logout", handler.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/pages", api.ShowPageList)
			auth.GET("/pages/:id/edit", api.ShowPageEditor)
			auth.GET("/settings", api.ShowSiteSettings)

			// API路由
			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/pages", api.GetPages)
				apiGroup.PUT("/pages/:id", api.UpdatePageBody)
				apiGroup.POST("/sync", api.RunSync)
				apiGroup.GET("/settings", api.GetSiteSettings)
				apiGroup.PUT("/settings", api.UpdateSiteSettings)
				apiGroup.POST("/uploads", api.UploadImage)
			}
		}
	}

	return r
}

// formatRelativeTime 把时间转成「N分钟前」样式的相对描述，零值返回空串。
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	diff := now.Sub(t)
	if diff < time.Minute {
		return "刚刚"
	}

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%d分钟前", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d小时前", int(diff.Hours()))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%d天前", int(diff.Hours()/24))
	case diff < 365*24*time.Hour:
		return fmt.Sprintf("%d个月前", int(diff.Hours()/(24*30)))
	default:
		return fmt.Sprintf("%d年前", int(diff.Hours()/(24*365)))
	}
}
