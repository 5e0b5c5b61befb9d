package handler

import (
	"strings"

	"github.com/fieldnotes/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	pages     *service.PageService
	posts     *service.PostService
	tags      *service.TagService
	sync      *service.SyncService
	activity  *service.ActivityService
	settings  *service.SiteSettingService
	visits    *service.VisitService
	uploadDir string
	uploadURL string
}

type siteViewModel struct {
	Name    string
	Tagline string
	Footer  string
}

const siteSettingsContextKey = "__site_settings"

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, contentDir, uploadDir, uploadURL string) *API {
	return &API{
		db:        gdb,
		pages:     service.NewPageService(gdb, contentDir),
		posts:     service.NewPostService(gdb),
		tags:      service.NewTagService(gdb),
		sync:      service.NewSyncService(gdb, contentDir),
		activity:  service.NewActivityService(gdb),
		settings:  service.NewSiteSettingService(gdb),
		visits:    service.NewVisitService(gdb),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Sync exposes the sync service so the content watcher can share it.
func (a *API) Sync() *service.SyncService {
	return a.sync
}

func (a *API) siteSettings(c *gin.Context) siteViewModel {
	if cached, exists := c.Get(siteSettingsContextKey); exists {
		if view, ok := cached.(siteViewModel); ok {
			return view
		}
	}

	settings, err := a.settings.GetSettings()
	if err != nil {
		c.Error(err)
	}

	view := siteViewModel{
		Name:    strings.TrimSpace(settings.SiteName),
		Tagline: strings.TrimSpace(settings.SiteTagline),
		Footer:  strings.TrimSpace(settings.FooterText),
	}
	if view.Name == "" {
		view.Name = "Fieldnotes"
	}
	if view.Footer == "" {
		view.Footer = "日拱一卒，功不唐捐"
	}

	c.Set(siteSettingsContextKey, view)
	return view
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	view := a.siteSettings(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name":    view.Name,
			"tagline": view.Tagline,
			"footer":  view.Footer,
		}
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = view.Name
	}

	c.HTML(status, template, payload)
}
