package ports

import (
	"context"
	"errors"
	"time"

	"qctrack/internal/errs"
)

var (
	ErrInspectionNotFound = errs.WithKind(errors.New("inspection record not found"), errs.KindNotFound)

	// ErrUniquenessConflict is returned when an insert hits a unique key, typically an
	// inspection number or (station, lot, round) computed by a concurrent writer.
	ErrUniquenessConflict = errs.WithKind(errors.New("uniqueness conflict"), errs.KindConflict)
)

type InspectionRecord struct {
	ID                  uint64    `json:"id"`
	Station             string    `json:"station"`
	InspectionNumber    string    `json:"inspection_number"`
	InspectionNumberRef *string   `json:"inspection_number_ref"`
	LotNumber           string    `json:"lot_number"`
	PartSite            string    `json:"part_site"`
	ItemNumber          string    `json:"item_number"`
	Model               string    `json:"model"`
	Version             string    `json:"version"`
	MachineLineNo       string    `json:"machine_line_no"`
	SamplingReasonID    *uint64   `json:"sampling_reason_id"`
	LotQty              int       `json:"lot_qty"`
	Shift               *string   `json:"shift"`
	InspectionLineID    *string   `json:"inspection_line_id"`
	QCRef               *string   `json:"qc_ref"`
	SampleQty           *int      `json:"sample_qty"`
	DefectQty           *int      `json:"defect_qty"`
	Judgment            *string   `json:"judgment"`
	FiscalYear          string    `json:"fiscal_year"`
	WorkWeek            string    `json:"work_week"`
	Round               int       `json:"round"`
	InspectionDate      time.Time `json:"inspection_date"`
	CreatedBy           uint64    `json:"created_by"`
	UpdatedBy           uint64    `json:"updated_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type InspectionFilter struct {
	Station    string
	LotNumber  string
	FiscalYear string
	WorkWeek   string
	Judgment   string
	Limit      int
	Offset     int
}

// InspectionUpdate carries the mutable columns; nil fields are left untouched.
type InspectionUpdate struct {
	PartSite         *string
	ItemNumber       *string
	Model            *string
	Version          *string
	MachineLineNo    *string
	SamplingReasonID *uint64
	LotQty           *int
	Shift            *string
	InspectionLineID *string
	QCRef            *string
	SampleQty        *int
	DefectQty        *int
	Judgment         *string
	UpdatedBy        uint64
	UpdatedAt        time.Time
}

type InspectionReadRepository interface {
	GetInspection(ctx context.Context, id uint64) (InspectionRecord, error)
	GetInspectionByNumber(ctx context.Context, number string) (InspectionRecord, error)
	ListInspections(ctx context.Context, filter InspectionFilter) ([]InspectionRecord, error)
	// ListInspectionNumbersWithPrefix returns every stored inspection number starting with prefix.
	ListInspectionNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	// MaxSamplingRound returns 0 when the pair has no records.
	MaxSamplingRound(ctx context.Context, station string, lotNumber string) (int, error)
}

type InspectionRepository interface {
	InspectionReadRepository
	CreateInspection(ctx context.Context, record InspectionRecord) (InspectionRecord, error)
	UpdateInspection(ctx context.Context, id uint64, update InspectionUpdate) error
	DeleteInspection(ctx context.Context, id uint64) error
}
