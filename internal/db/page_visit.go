package db

import "time"

// PageVisitCounter 按 permalink 累计页面浏览量。
type PageVisitCounter struct {
	ID        uint   `gorm:"primaryKey"`
	Permalink string `gorm:"uniqueIndex;not null"`
	Views     uint64 `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名。
func (PageVisitCounter) TableName() string {
	return "page_visit_counters"
}

// PageDailyVisitor 记录每天访问过某 permalink 的访客，用于 UV 去重。
type PageDailyVisitor struct {
	ID        uint   `gorm:"primaryKey"`
	Day       string `gorm:"size:10;uniqueIndex:idx_page_day_visitor"`
	Permalink string `gorm:"uniqueIndex:idx_page_day_visitor"`
	VisitorID string `gorm:"size:64;uniqueIndex:idx_page_day_visitor"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名。
func (PageDailyVisitor) TableName() string {
	return "page_daily_visitors"
}
