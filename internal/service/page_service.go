package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fieldnotes/internal/content"
	"github.com/fieldnotes/internal/db"
	"github.com/fieldnotes/internal/frontmatter"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound    = errors.New("page not found")
	ErrPageBodyMissing = errors.New("page body is required")
	ErrPageSourceGone  = errors.New("page source file is missing")
)

// PageService provides access to content pages indexed from markdown files.
// Reads go through the database index; writes go to the source file first,
// with the index updated to match.
type PageService struct {
	db         *gorm.DB
	contentDir string
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB, contentDir string) *PageService {
	return &PageService{db: gdb, contentDir: contentDir}
}

// GetByPermalink fetches a page for a normalized permalink.
func (s *PageService) GetByPermalink(permalink string) (*db.Page, error) {
	var page db.Page
	key := content.NormalizePermalink(permalink)
	if err := s.db.Where("permalink = ?", key).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// Get fetches a page by id.
func (s *PageService) Get(id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// List returns all indexed pages ordered by permalink.
func (s *PageService) List() ([]db.Page, error) {
	var pages []db.Page
	if err := s.db.Order("permalink asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// UpdateBody rewrites a page's markdown source file with a new body, keeping
// its front matter intact, then refreshes the index row. The body must be
// non-empty prose.
func (s *PageService) UpdateBody(id uint, body string) (*db.Page, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrPageBodyMissing
	}

	page, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	sourcePath := filepath.Join(s.contentDir, filepath.FromSlash(page.SourcePath))
	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPageSourceGone
		}
		return nil, err
	}

	meta, _, had, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("page source %s has unusable front matter: %w", page.SourcePath, err)
	}
	if !had {
		return nil, fmt.Errorf("page source %s lost its front matter block", page.SourcePath)
	}

	style := frontmatter.DetectStyle(raw)
	if !strings.HasSuffix(body, "\n") {
		body += style.Newline
	}
	rewritten, err := frontmatter.Rewrite(meta, []byte(body), style)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(sourcePath, rewritten, 0o644); err != nil {
		return nil, err
	}

	doc, err := content.Load(s.contentDir, page.SourcePath)
	if err != nil {
		return nil, err
	}
	page.Body = string(doc.Body)
	page.Checksum = doc.Checksum
	if err := s.db.Save(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}
