package service

import (
	"errors"
	"time"

	"github.com/fieldnotes/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const visitDayLayout = "2006-01-02"

// VisitService 负责按 permalink 统计页面浏览，访客按天去重。
type VisitService struct {
	db *gorm.DB
}

// NewVisitService 创建 VisitService。
func NewVisitService(gdb *gorm.DB) *VisitService {
	return &VisitService{db: gdb}
}

// RecordVisit 记录一次访问并返回该 permalink 的累计浏览量。
// 同一访客同一天重复访问同一路径只计一次。
func (s *VisitService) RecordVisit(permalink, visitorID string, now time.Time) (uint64, error) {
	if permalink == "" || visitorID == "" {
		return 0, errors.New("invalid permalink or visitor id")
	}

	var views uint64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		visitor := db.PageDailyVisitor{
			Day:       now.Format(visitDayLayout),
			Permalink: permalink,
			VisitorID: visitorID,
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "day"}, {Name: "permalink"}, {Name: "visitor_id"},
			},
			DoNothing: true,
		}).Create(&visitor)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			// 当天已计数，读回当前值即可
			var counter db.PageVisitCounter
			if err := tx.Where("permalink = ?", permalink).First(&counter).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			views = counter.Views
			return nil
		}

		var counter db.PageVisitCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("permalink = ?", permalink).
			First(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = db.PageVisitCounter{Permalink: permalink}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		counter.Views++
		if err := tx.Save(&counter).Error; err != nil {
			return err
		}
		views = counter.Views
		return nil
	})
	if err != nil {
		return 0, err
	}
	return views, nil
}

// Views 返回某 permalink 的累计浏览量，未统计过的路径返回 0。
func (s *VisitService) Views(permalink string) (uint64, error) {
	var counter db.PageVisitCounter
	if err := s.db.Where("permalink = ?", permalink).First(&counter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return counter.Views, nil
}

// TopPages 返回浏览量最高的若干路径。
func (s *VisitService) TopPages(limit int) ([]db.PageVisitCounter, error) {
	if limit <= 0 {
		limit = 10
	}
	var counters []db.PageVisitCounter
	if err := s.db.Order("views desc, permalink asc").Limit(limit).Find(&counters).Error; err != nil {
		return nil, err
	}
	return counters, nil
}
