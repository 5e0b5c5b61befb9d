package db

import (
	"time"

	"gorm.io/gorm"
)

// Post 定义了文章模型，来自 _posts/ 下带日期前缀的 markdown 文件。
type Post struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex;not null"`
	Permalink   string `gorm:"uniqueIndex;not null"`
	Layout      string
	Title       string `gorm:"not null"`
	Summary     string
	Body        string    `gorm:"type:text"`
	PublishedAt time.Time `gorm:"index"`
	Draft       bool      `gorm:"default:false"`
	SourcePath  string    `gorm:"uniqueIndex;not null"`
	Checksum    string    `gorm:"size:64;not null"`
	Tags        []Tag     `gorm:"many2many:post_tags;"`
}
