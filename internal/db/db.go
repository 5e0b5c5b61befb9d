package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 fieldnotes.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "fieldnotes.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}

	// 自动迁移模式，为核心模型创建表
	if err = DB.AutoMigrate(
		&User{},
		&Page{},
		&Post{},
		&Tag{},
		&SiteSetting{},
		&PageVisitCounter{},
		&PageDailyVisitor{},
	); err != nil {
		return err
	}

	// 早期版本用 slug 做页面主键，permalink 接替后清理遗留列和索引
	migrator := DB.Migrator()
	if migrator.HasIndex(&Page{}, "idx_pages_slug") {
		if dropErr := migrator.DropIndex(&Page{}, "idx_pages_slug"); dropErr != nil {
			return dropErr
		}
	}
	if migrator.HasColumn(&Page{}, "slug") {
		if dropErr := migrator.DropColumn(&Page{}, "slug"); dropErr != nil {
			return dropErr
		}
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
