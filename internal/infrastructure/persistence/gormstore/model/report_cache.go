package model

import "time"

type ReportCacheEntry struct {
	Key       string     `gorm:"column:key;type:varchar(255);primaryKey"`
	Value     string     `gorm:"column:value;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (ReportCacheEntry) TableName() string {
	return "report_cache"
}
