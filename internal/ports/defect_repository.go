package ports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"qctrack/internal/errs"
)

var ErrDefectNotFound = errs.WithKind(errors.New("defect record not found"), errs.KindNotFound)

type DefectRecord struct {
	ID             uint64          `json:"id"`
	InspectionID   *uint64         `json:"inspection_id"`
	Station        string          `json:"station"`
	LotNumber      string          `json:"lot_number"`
	ItemNumber     string          `json:"item_number"`
	MachineLineNo  string          `json:"machine_line_no"`
	DefectCode     string          `json:"defect_code"`
	DefectCategory string          `json:"defect_category"`
	Qty            int             `json:"qty"`
	FoundAt        time.Time       `json:"found_at"`
	FiscalYear     string          `json:"fiscal_year"`
	WorkWeek       string          `json:"work_week"`
	Remark         string          `json:"remark"`
	Attributes     json.RawMessage `json:"attributes,omitempty"`
	CreatedBy      uint64          `json:"created_by"`
	UpdatedBy      uint64          `json:"updated_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type DefectFilter struct {
	Station      string
	LotNumber    string
	DefectCode   string
	FiscalYear   string
	WorkWeek     string
	InspectionID *uint64
	Limit        int
	Offset       int
}

type DefectUpdate struct {
	DefectCode     *string
	DefectCategory *string
	Qty            *int
	Remark         *string
	Attributes     json.RawMessage
	UpdatedBy      uint64
	UpdatedAt      time.Time
}

type DefectRepository interface {
	CreateDefect(ctx context.Context, record DefectRecord) (DefectRecord, error)
	GetDefect(ctx context.Context, id uint64) (DefectRecord, error)
	ListDefects(ctx context.Context, filter DefectFilter) ([]DefectRecord, error)
	UpdateDefect(ctx context.Context, id uint64, update DefectUpdate) error
	DeleteDefect(ctx context.Context, id uint64) error
}
