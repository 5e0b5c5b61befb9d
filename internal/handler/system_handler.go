package handler

import (
	"net/http"

	"github.com/fieldnotes/internal/service"
	"github.com/gin-gonic/gin"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

// ShowSiteSettings 渲染站点设置页面。
func (a *API) ShowSiteSettings(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "site_settings.html", gin.H{
		"title": "站点设置",
	})
}

type siteSettingsRequest struct {
	SiteName    string `json:"siteName"`
	SiteTagline string `json:"siteTagline"`
	FooterText  string `json:"footerText"`
}

// GetSiteSettings 返回当前站点设置。
func (a *API) GetSiteSettings(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载站点设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"siteName":    settings.SiteName,
		"siteTagline": settings.SiteTagline,
		"footerText":  settings.FooterText,
	})
}

// UpdateSiteSettings 保存站点设置。
func (a *API) UpdateSiteSettings(c *gin.Context) {
	var payload siteSettingsRequest
	if !bindJSON(c, &payload, "设置格式不正确") {
		return
	}

	settings, err := a.settings.UpdateSettings(service.SiteSettingsInput{
		SiteName:    payload.SiteName,
		SiteTagline: payload.SiteTagline,
		FooterText:  payload.FooterText,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存站点设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "站点设置已更新",
		"siteName":    settings.SiteName,
		"siteTagline": settings.SiteTagline,
		"footerText":  settings.FooterText,
	})
}
