package model

import "time"

// InspectionRecord keeps inspection_number globally unique and (station, lot_number, round)
// unique. Both indexes are what rejects a second writer that computed the same next value.
type InspectionRecord struct {
	ID                  uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Station             string    `gorm:"column:station;type:varchar(3);not null;uniqueIndex:ux_inspection_records_station_lot_round,priority:1"`
	InspectionNumber    string    `gorm:"column:inspection_number;type:varchar(32);not null;uniqueIndex:ux_inspection_records_number"`
	InspectionNumberRef *string   `gorm:"column:inspection_number_ref;type:varchar(32);index"`
	LotNumber           string    `gorm:"column:lot_number;type:varchar(64);not null;uniqueIndex:ux_inspection_records_station_lot_round,priority:2"`
	PartSite            string    `gorm:"column:part_site;type:varchar(64);not null;default:''"`
	ItemNumber          string    `gorm:"column:item_number;type:varchar(64);not null;default:'';index"`
	Model               string    `gorm:"column:model;type:varchar(64);not null;default:''"`
	Version             string    `gorm:"column:version;type:varchar(32);not null;default:''"`
	MachineLineNo       string    `gorm:"column:machine_line_no;type:varchar(32);not null;default:''"`
	SamplingReasonID    *uint64   `gorm:"column:sampling_reason_id"`
	LotQty              int       `gorm:"column:lot_qty;not null;default:0"`
	Shift               *string   `gorm:"column:shift;type:varchar(16)"`
	InspectionLineID    *string   `gorm:"column:inspection_line_id;type:varchar(32)"`
	QCRef               *string   `gorm:"column:qc_ref;type:varchar(64)"`
	SampleQty           *int      `gorm:"column:sample_qty"`
	DefectQty           *int      `gorm:"column:defect_qty"`
	Judgment            *string   `gorm:"column:judgment;type:varchar(8)"`
	FiscalYear          string    `gorm:"column:fiscal_year;type:varchar(4);not null;index:ix_inspection_records_fiscal,priority:1"`
	WorkWeek            string    `gorm:"column:work_week;type:varchar(2);not null;index:ix_inspection_records_fiscal,priority:2"`
	Round               int       `gorm:"column:round;not null;uniqueIndex:ux_inspection_records_station_lot_round,priority:3"`
	InspectionDate      time.Time `gorm:"column:inspection_date;not null"`
	CreatedBy           uint64    `gorm:"column:created_by;not null;default:0"`
	UpdatedBy           uint64    `gorm:"column:updated_by;not null;default:0"`
	CreatedAt           time.Time `gorm:"column:created_at;not null"`
	UpdatedAt           time.Time `gorm:"column:updated_at;not null"`
}

func (InspectionRecord) TableName() string {
	return "inspection_records"
}
