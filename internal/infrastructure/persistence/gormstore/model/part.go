package model

import "time"

type Part struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	PartNumber  string    `gorm:"column:part_number;type:varchar(64);not null;uniqueIndex"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	Model       string    `gorm:"column:model;type:varchar(64);not null;default:''"`
	Version     string    `gorm:"column:version;type:varchar(32);not null;default:''"`
	PartSite    string    `gorm:"column:part_site;type:varchar(64);not null;default:''"`
	Active      bool      `gorm:"column:active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (Part) TableName() string {
	return "parts"
}
