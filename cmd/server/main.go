package main

import (
	"log"

	"github.com/fieldnotes/internal/config"
	"github.com/fieldnotes/internal/db"
	"github.com/fieldnotes/internal/handler"
	"github.com/fieldnotes/internal/router"
	"github.com/fieldnotes/internal/watch"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const templateGlob = "web/templates/*.html"

func main() {
	// .env 仅用于本地开发，缺失时静默忽略
	_ = godotenv.Load()
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 确保超级管理员账号存在
	if cfg.SuperRootUserName != "" && cfg.SuperRootPassword != "" {
		if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
			log.Fatalf("failed to ensure admin user: %v", err)
		}
	}

	api := handler.NewAPI(db.DB, cfg.ContentDir, cfg.UploadDir, cfg.UploadURLPath)

	// 启动前做一次全量同步，把内容目录灌进索引
	report, err := api.Sync().Sync()
	if err != nil {
		log.Fatalf("failed to sync content: %v", err)
	}
	log.Printf("content synced: %d pages, %d posts (%d updated, %d removed) in %s",
		report.Pages, report.Posts, report.Updated, report.Removed, report.Took)
	for _, warning := range report.Warnings {
		log.Printf("content warning: %s: %v", warning.Path, warning.Problems)
	}

	if cfg.WatchContent {
		watcher, err := watch.New(cfg.ContentDir, api.Sync())
		if err != nil {
			log.Fatalf("failed to create content watcher: %v", err)
		}
		if err := watcher.Start(); err != nil {
			log.Fatalf("failed to start content watcher: %v", err)
		}
		defer watcher.Stop()
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.SessionSecret, cfg.UploadDir, cfg.UploadURLPath, templateGlob)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
