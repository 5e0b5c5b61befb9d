package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldnotes/internal/config"
	"github.com/fieldnotes/internal/db"
	"github.com/fieldnotes/internal/service"
	"github.com/joho/godotenv"
)

// 示例内容生成器：往内容目录写入演示页面和文章，然后做一次全量同步。
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成示例内容...")

	if err := writeSampleContent(cfg.ContentDir, time.Now()); err != nil {
		log.Fatal("写入示例内容失败:", err)
	}

	syncSvc := service.NewSyncService(db.DB, cfg.ContentDir)
	report, err := syncSvc.Sync()
	if err != nil {
		log.Fatal("内容同步失败:", err)
	}

	fmt.Println("示例内容生成完成！")
	fmt.Printf("页面: %d 篇，文章: %d 篇\n", report.Pages, report.Posts)
	for _, warning := range report.Warnings {
		fmt.Printf("警告: %s: %v\n", warning.Path, warning.Problems)
	}
}

type sampleFile struct {
	rel  string
	body string
}

// writeSampleContent 写入演示内容，已存在的文件不覆盖。
func writeSampleContent(root string, now time.Time) error {
	samples := []sampleFile{
		{
			rel: "about.md",
			body: "---\nlayout: page\ntitle: About Me\npermalink: /about/\n---\n" +
				"写代码，也写字。这个站点记录两者。\n",
		},
		{
			rel: "now.md",
			body: "---\nlayout: page\ntitle: Now\npermalink: /now/\n---\n" +
				"最近在读的书、在做的项目。\n",
		},
	}

	posts := []struct {
		daysAgo int
		slug    string
		title   string
		tags    string
		body    string
	}{
		{daysAgo: 2, slug: "hello-world", title: "Hello World", tags: "[生活]", body: "第一篇文章。\n"},
		{daysAgo: 9, slug: "reading-notes", title: "读书笔记", tags: "[思考, 生活]", body: "最近读完的几本书。\n"},
		{daysAgo: 20, slug: "sqlite-tips", title: "SQLite 使用心得", tags: "[技术, 数据库]", body: "轻量数据库的几个实用技巧。\n"},
	}
	for _, p := range posts {
		date := now.AddDate(0, 0, -p.daysAgo).Format("2006-01-02")
		samples = append(samples, sampleFile{
			rel: filepath.Join("_posts", fmt.Sprintf("%s-%s.md", date, p.slug)),
			body: fmt.Sprintf("---\nlayout: post\ntitle: %s\ntags: %s\n---\n%s",
				p.title, p.tags, p.body),
		})
	}

	for _, sample := range samples {
		path := filepath.Join(root, sample.rel)
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("已存在，跳过: %s\n", sample.rel)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(sample.body), 0o644); err != nil {
			return err
		}
		fmt.Printf("已写入: %s\n", sample.rel)
	}
	return nil
}
