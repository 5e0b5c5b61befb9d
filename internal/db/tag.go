package db

import "gorm.io/gorm"

// Tag 定义了标签模型，标签来自文章 front matter 的 tags 列表。
type Tag struct {
	gorm.Model
	Name  string `gorm:"unique;not null"`
	Posts []Post `gorm:"many2many:post_tags;"`
}
