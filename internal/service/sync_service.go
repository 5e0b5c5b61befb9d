package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldnotes/internal/content"
	"github.com/fieldnotes/internal/db"
	"gorm.io/gorm"
)

// SyncWarning reports a content file the sync pass could not publish.
type SyncWarning struct {
	Path     string   `json:"path"`
	Problems []string `json:"problems"`
}

// SyncReport summarizes one sync pass over the content directory.
type SyncReport struct {
	Pages    int           `json:"pages"`
	Posts    int           `json:"posts"`
	Updated  int           `json:"updated"`
	Removed  int           `json:"removed"`
	Warnings []SyncWarning `json:"warnings,omitempty"`
	Took     time.Duration `json:"-"`
}

// SyncService reconciles the database index with the markdown content tree.
// Files are the source of truth: valid documents are upserted, rows whose
// source files disappeared or stopped validating are pruned, and invalid
// documents come back as warnings rather than errors.
type SyncService struct {
	db         *gorm.DB
	contentDir string
}

// NewSyncService creates a SyncService for a content directory.
func NewSyncService(gdb *gorm.DB, contentDir string) *SyncService {
	return &SyncService{db: gdb, contentDir: contentDir}
}

// Sync runs a full reconciliation pass.
func (s *SyncService) Sync() (*SyncReport, error) {
	started := time.Now()

	docs, err := content.Scan(s.contentDir)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}

	// permalink 必须全站唯一；路径序在前的文件获胜，后来者降级为警告
	claimed := make(map[string]string, len(docs))
	var valid []content.Document
	for _, doc := range docs {
		if doc.Valid() {
			if winner, taken := claimed[doc.Permalink]; taken {
				doc.Problems = append(doc.Problems,
					fmt.Sprintf("permalink %s already claimed by %s", doc.Permalink, winner))
			} else {
				claimed[doc.Permalink] = doc.Path
			}
		}
		if doc.Valid() {
			valid = append(valid, doc)
		} else {
			report.Warnings = append(report.Warnings, SyncWarning{Path: doc.Path, Problems: doc.Problems})
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var pagePaths, postPaths []string
		for _, doc := range valid {
			switch doc.Kind {
			case content.KindPage:
				pagePaths = append(pagePaths, doc.Path)
			case content.KindPost:
				postPaths = append(postPaths, doc.Path)
			}
		}

		// 先清掉源文件已消失的行再 upsert：改名后的文件保留原 permalink 时，
		// 旧行不先删掉会撞上唯一索引
		removedPages, err := pruneMissing(tx, &db.Page{}, pagePaths)
		if err != nil {
			return err
		}
		removedPosts, err := pruneMissing(tx, &db.Post{}, postPaths)
		if err != nil {
			return err
		}
		report.Removed = int(removedPages + removedPosts)

		for _, doc := range valid {
			switch doc.Kind {
			case content.KindPage:
				updated, err := s.upsertPage(tx, doc)
				if err != nil {
					return err
				}
				report.Pages++
				if updated {
					report.Updated++
				}
			case content.KindPost:
				updated, err := s.upsertPost(tx, doc)
				if err != nil {
					return err
				}
				report.Posts++
				if updated {
					report.Updated++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Took = time.Since(started)
	return report, nil
}

// SyncOne refreshes a single content file in the index, used by the watcher
// for cheap incremental updates. Unknown or invalid files fall back to a
// full pass so pruning and conflict checks stay correct.
func (s *SyncService) SyncOne(rel string) (*SyncReport, error) {
	doc, err := content.Load(s.contentDir, rel)
	if err != nil || !doc.Valid() {
		return s.Sync()
	}

	// permalink 被别的文档占用时走全量同步，让路径序裁决归属
	var conflict int64
	switch doc.Kind {
	case content.KindPage:
		s.db.Model(&db.Post{}).Where("permalink = ?", doc.Permalink).Count(&conflict)
		if conflict == 0 {
			s.db.Model(&db.Page{}).
				Where("permalink = ? AND source_path <> ?", doc.Permalink, doc.Path).
				Count(&conflict)
		}
	case content.KindPost:
		s.db.Model(&db.Page{}).Where("permalink = ?", doc.Permalink).Count(&conflict)
		if conflict == 0 {
			s.db.Model(&db.Post{}).
				Where("permalink = ? AND source_path <> ?", doc.Permalink, doc.Path).
				Count(&conflict)
		}
	}
	if conflict > 0 {
		return s.Sync()
	}

	report := &SyncReport{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var updated bool
		var upsertErr error
		switch doc.Kind {
		case content.KindPage:
			updated, upsertErr = s.upsertPage(tx, doc)
			report.Pages++
		case content.KindPost:
			updated, upsertErr = s.upsertPost(tx, doc)
			report.Posts++
		}
		if updated {
			report.Updated++
		}
		return upsertErr
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *SyncService) upsertPage(tx *gorm.DB, doc content.Document) (bool, error) {
	var page db.Page
	err := tx.Where("source_path = ?", doc.Path).First(&page).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		page = db.Page{
			Permalink:  doc.Permalink,
			Layout:     doc.Meta.Layout,
			Title:      doc.Meta.Title,
			Body:       string(doc.Body),
			SourcePath: doc.Path,
			Checksum:   doc.Checksum,
		}
		return true, tx.Create(&page).Error
	case err != nil:
		return false, err
	}

	if page.Checksum == doc.Checksum && page.Permalink == doc.Permalink {
		return false, nil
	}

	page.Permalink = doc.Permalink
	page.Layout = doc.Meta.Layout
	page.Title = doc.Meta.Title
	page.Body = string(doc.Body)
	page.Checksum = doc.Checksum
	return true, tx.Save(&page).Error
}

func (s *SyncService) upsertPost(tx *gorm.DB, doc content.Document) (bool, error) {
	tags, err := ensureTags(tx, doc.Meta.Tags)
	if err != nil {
		return false, err
	}

	var post db.Post
	err = tx.Where("source_path = ?", doc.Path).First(&post).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		post = db.Post{
			Slug:        doc.Slug,
			Permalink:   doc.Permalink,
			Layout:      doc.Meta.Layout,
			Title:       doc.Meta.Title,
			Summary:     strings.TrimSpace(doc.Meta.Summary),
			Body:        string(doc.Body),
			PublishedAt: doc.Date,
			Draft:       doc.Meta.Draft,
			SourcePath:  doc.Path,
			Checksum:    doc.Checksum,
		}
		if err := tx.Create(&post).Error; err != nil {
			return false, err
		}
		return true, tx.Model(&post).Association("Tags").Replace(tags)
	case err != nil:
		return false, err
	}

	if post.Checksum == doc.Checksum && post.Permalink == doc.Permalink {
		return false, nil
	}

	post.Slug = doc.Slug
	post.Permalink = doc.Permalink
	post.Layout = doc.Meta.Layout
	post.Title = doc.Meta.Title
	post.Summary = strings.TrimSpace(doc.Meta.Summary)
	post.Body = string(doc.Body)
	post.PublishedAt = doc.Date
	post.Draft = doc.Meta.Draft
	post.Checksum = doc.Checksum
	if err := tx.Save(&post).Error; err != nil {
		return false, err
	}
	return true, tx.Model(&post).Association("Tags").Replace(tags)
}

func ensureTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	var tags []db.Tag
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		var tag db.Tag
		err := tx.Where("name = ?", normalized).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = db.Tag{Name: normalized}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func pruneMissing(tx *gorm.DB, model any, keep []string) (int64, error) {
	query := tx.Unscoped().Model(model)
	if len(keep) > 0 {
		query = query.Where("source_path NOT IN ?", keep)
	}
	result := query.Delete(model)
	return result.RowsAffected, result.Error
}
