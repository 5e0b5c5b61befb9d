package service

import (
	"errors"
	"sort"
	"time"

	"github.com/fieldnotes/internal/db"
	"gorm.io/gorm"
)

// defaultActivityWindow 是统计近期发文时回看的天数。
const defaultActivityWindow = 30

// RecentPost is one post inside the activity window.
type RecentPost struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	DaysAgo int    `json:"daysAgo"`
}

// ActivitySummary describes how recently the site has been posting.
type ActivitySummary struct {
	DaysSinceLastPost int          `json:"daysSinceLastPost"`
	WindowDays        int          `json:"windowDays"`
	RecentCount       int          `json:"recentCount"`
	Recent            []RecentPost `json:"recent"`
	Verdict           string       `json:"verdict"`
}

// ActivityService computes posting-recency statistics for published posts.
type ActivityService struct {
	db     *gorm.DB
	window int
}

// NewActivityService creates an ActivityService with the default window.
func NewActivityService(gdb *gorm.DB) *ActivityService {
	return &ActivityService{db: gdb, window: defaultActivityWindow}
}

// WithWindow adjusts the look-back window, mostly for tests.
func (s *ActivityService) WithWindow(days int) *ActivityService {
	if days > 0 {
		s.window = days
	}
	return s
}

// Summary reports days since the latest post and the posts published inside
// the window, oldest first. Draft posts never count.
func (s *ActivityService) Summary(now time.Time) (*ActivitySummary, error) {
	summary := &ActivitySummary{DaysSinceLastPost: -1, WindowDays: s.window}

	var latest db.Post
	err := s.db.Where("draft = ?", false).
		Order("published_at desc, id desc").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			summary.Verdict = "UH OH!"
			return summary, nil
		}
		return nil, err
	}
	summary.DaysSinceLastPost = daysBetween(latest.PublishedAt, now)

	cutoff := now.AddDate(0, 0, -s.window)
	var recent []db.Post
	if err := s.db.Where("draft = ? AND published_at > ?", false, cutoff).
		Order("published_at asc, id asc").
		Find(&recent).Error; err != nil {
		return nil, err
	}

	for _, post := range recent {
		summary.Recent = append(summary.Recent, RecentPost{
			Title:   post.Title,
			Slug:    post.Slug,
			DaysAgo: daysBetween(post.PublishedAt, now),
		})
	}
	sort.SliceStable(summary.Recent, func(i, j int) bool {
		return summary.Recent[i].DaysAgo > summary.Recent[j].DaysAgo
	})
	summary.RecentCount = len(summary.Recent)

	// 两周没发文就该着急了
	if summary.DaysSinceLastPost < 14 {
		summary.Verdict = "Nice!"
	} else {
		summary.Verdict = "UH OH!"
	}
	return summary, nil
}

func daysBetween(from, to time.Time) int {
	if from.IsZero() || from.After(to) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
