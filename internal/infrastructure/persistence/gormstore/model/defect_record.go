package model

import (
	"time"

	"gorm.io/datatypes"
)

type DefectRecord struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	InspectionID   *uint64        `gorm:"column:inspection_id;index"`
	Station        string         `gorm:"column:station;type:varchar(3);not null"`
	LotNumber      string         `gorm:"column:lot_number;type:varchar(64);not null;index"`
	ItemNumber     string         `gorm:"column:item_number;type:varchar(64);not null;default:''"`
	MachineLineNo  string         `gorm:"column:machine_line_no;type:varchar(32);not null;default:''"`
	DefectCode     string         `gorm:"column:defect_code;type:varchar(32);not null;index"`
	DefectCategory string         `gorm:"column:defect_category;type:varchar(16);not null"`
	Qty            int            `gorm:"column:qty;not null"`
	FoundAt        time.Time      `gorm:"column:found_at;not null"`
	FiscalYear     string         `gorm:"column:fiscal_year;type:varchar(4);not null;index:ix_defect_records_fiscal,priority:1"`
	WorkWeek       string         `gorm:"column:work_week;type:varchar(2);not null;index:ix_defect_records_fiscal,priority:2"`
	Remark         string         `gorm:"column:remark;type:text;not null;default:''"`
	Attributes     datatypes.JSON `gorm:"column:attributes"`
	CreatedBy      uint64         `gorm:"column:created_by;not null;default:0"`
	UpdatedBy      uint64         `gorm:"column:updated_by;not null;default:0"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null"`
}

func (DefectRecord) TableName() string {
	return "defect_records"
}
