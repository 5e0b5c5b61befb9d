package db

import "gorm.io/gorm"

// Page 对应内容目录中一个独立页面文件，例如 About。
// markdown 源文件才是内容的权威来源，数据库只是索引。
type Page struct {
	gorm.Model
	Permalink  string `gorm:"uniqueIndex;not null"`
	Layout     string `gorm:"not null"`
	Title      string `gorm:"not null"`
	Body       string `gorm:"type:text"`
	SourcePath string `gorm:"uniqueIndex;not null"`
	Checksum   string `gorm:"size:64;not null"`
}
