package service

import (
	"errors"

	"github.com/fieldnotes/internal/db"
	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService wraps tag related read operations. Tags are authored in post
// front matter and materialized by sync, so there is nothing to create or
// delete here.
type TagService struct {
	db *gorm.DB
}

// TagUsage 描述标签在非草稿文章中的使用次数
type TagUsage struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns all tags ordered by name.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Order("name asc").Order("id asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Usage 返回已发布文章中标签的使用统计，未被引用的标签不出现。
func (s *TagService) Usage() ([]TagUsage, error) {
	var rows []TagUsage
	query := s.db.Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT posts.id) AS count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id").
		Where("posts.draft = ? AND posts.deleted_at IS NULL", false).
		Group("tags.id, tags.name").
		Order("count desc").
		Order("tags.name asc")

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByName fetches a tag by its normalized name.
func (s *TagService) GetByName(name string) (*db.Tag, error) {
	var tag db.Tag
	if err := s.db.Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}
