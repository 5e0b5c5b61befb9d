package service

import (
	"fmt"
	"strings"

	"github.com/fieldnotes/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiteSettings 描述后台可配置的站点信息。
type SiteSettings struct {
	SiteName    string
	SiteTagline string
	FooterText  string
}

// SiteSettingsInput 用于更新站点设置。
type SiteSettingsInput struct {
	SiteName    string
	SiteTagline string
	FooterText  string
}

// SiteSettingService 提供站点设置的读取与更新能力。
type SiteSettingService struct {
	db *gorm.DB
}

// NewSiteSettingService 构造 SiteSettingService。
func NewSiteSettingService(gdb *gorm.DB) *SiteSettingService {
	return &SiteSettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeySiteTagline,
	db.SettingKeyFooterText,
}

// GetSettings 读取站点设置，如未设置将返回默认值。
func (s *SiteSettingService) GetSettings() (SiteSettings, error) {
	result := SiteSettings{SiteName: "Fieldnotes"}

	var records []db.SiteSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load site settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeySiteName:
			if strings.TrimSpace(record.Value) != "" {
				result.SiteName = record.Value
			}
		case db.SettingKeySiteTagline:
			result.SiteTagline = record.Value
		case db.SettingKeyFooterText:
			result.FooterText = record.Value
		}
	}

	return result, nil
}

// UpdateSettings 持久化站点设置并返回最新值。
func (s *SiteSettingService) UpdateSettings(input SiteSettingsInput) (SiteSettings, error) {
	values := map[string]string{
		db.SettingKeySiteName:    strings.TrimSpace(input.SiteName),
		db.SettingKeySiteTagline: strings.TrimSpace(input.SiteTagline),
		db.SettingKeyFooterText:  strings.TrimSpace(input.FooterText),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			setting := db.SiteSetting{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SiteSettings{}, err
	}

	return s.GetSettings()
}
