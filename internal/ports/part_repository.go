package ports

import (
	"context"
	"errors"
	"time"

	"qctrack/internal/errs"
)

var ErrPartNotFound = errs.WithKind(errors.New("part not found"), errs.KindNotFound)

type Part struct {
	ID          uint64    `json:"id"`
	PartNumber  string    `json:"part_number"`
	Description string    `json:"description"`
	Model       string    `json:"model"`
	Version     string    `json:"version"`
	PartSite    string    `json:"part_site"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PartUpdate struct {
	Description *string
	Model       *string
	Version     *string
	PartSite    *string
	Active      *bool
	UpdatedAt   time.Time
}

type PartRepository interface {
	CreatePart(ctx context.Context, part Part) (Part, error)
	GetPart(ctx context.Context, partNumber string) (Part, error)
	ListParts(ctx context.Context, activeOnly bool) ([]Part, error)
	UpdatePart(ctx context.Context, partNumber string, update PartUpdate) error
	DeletePart(ctx context.Context, partNumber string) error
	// UpsertPart inserts or updates by part number and reports whether a row was inserted.
	UpsertPart(ctx context.Context, part Part) (bool, error)
}
