package service

import (
	"errors"
	"strings"

	"github.com/fieldnotes/internal/db"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Search        string
	TagNames      []string
	IncludeDrafts bool
	Page          int
	PerPage       int
}

// PostListResult aggregates paginated list data and counters.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	DraftCount int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// GetBySlug fetches a post by its filename-derived slug with tags preloaded.
func (s *PostService) GetBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetByPermalink fetches a post by its normalized permalink.
func (s *PostService) GetByPermalink(permalink string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Where("permalink = ?", permalink).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List provides paginated posts with counters based on filters, newest first.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 10
	}

	countQuery := s.applyFilters(s.db.Model(&db.Post{}), filter)
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	var posts []db.Post
	dataQuery := s.applyFilters(s.db.Model(&db.Post{}).Preload("Tags"), filter)
	if err := dataQuery.
		Order("posts.published_at desc, posts.id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	result.Posts = posts

	if err := s.db.Model(&db.Post{}).Where("draft = ?", true).Count(&result.DraftCount).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	return result, nil
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter) *gorm.DB {
	if !filter.IncludeDrafts {
		query = query.Where("posts.draft = ?", false)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("posts.title LIKE ? OR posts.body LIKE ?", pattern, pattern)
	}

	names := make([]string, 0, len(filter.TagNames))
	for _, name := range filter.TagNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, strings.ToLower(trimmed))
		}
	}
	if len(names) > 0 {
		query = query.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name IN ?", names).
			Group("posts.id")
	}

	return query
}
