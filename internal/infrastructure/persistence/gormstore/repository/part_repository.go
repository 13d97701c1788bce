package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qctrack/internal/errs"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	"qctrack/internal/ports"
)

type PartRepository struct {
	db *gorm.DB
}

var _ ports.PartRepository = (*PartRepository)(nil)

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

func (r *PartRepository) CreatePart(ctx context.Context, part ports.Part) (ports.Part, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Part{}, err
	}

	row := toPartRow(part)
	if err := db.Create(&row).Error; err != nil {
		return ports.Part{}, wrapWriteError(err, "insert part")
	}
	return mapPart(row), nil
}

func (r *PartRepository) GetPart(ctx context.Context, partNumber string) (ports.Part, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Part{}, err
	}

	var row model.Part
	if err := db.Where("part_number = ?", strings.TrimSpace(partNumber)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Part{}, ports.ErrPartNotFound
		}
		return ports.Part{}, errs.Wrap(err, "query part")
	}
	return mapPart(row), nil
}

func (r *PartRepository) ListParts(ctx context.Context, activeOnly bool) ([]ports.Part, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Part{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var rows []model.Part
	if err := query.Order("part_number asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query parts")
	}

	items := make([]ports.Part, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPart(row))
	}
	return items, nil
}

func (r *PartRepository) UpdatePart(ctx context.Context, partNumber string, update ports.PartUpdate) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	values := map[string]any{"updated_at": update.UpdatedAt}
	setIf(values, "description", update.Description)
	setIf(values, "model", update.Model)
	setIf(values, "version", update.Version)
	setIf(values, "part_site", update.PartSite)
	setIf(values, "active", update.Active)

	result := db.Model(&model.Part{}).Where("part_number = ?", partNumber).Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update part")
	}
	if result.RowsAffected == 0 {
		return ports.ErrPartNotFound
	}
	return nil
}

func (r *PartRepository) DeletePart(ctx context.Context, partNumber string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Where("part_number = ?", partNumber).Delete(&model.Part{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete part")
	}
	if result.RowsAffected == 0 {
		return ports.ErrPartNotFound
	}
	return nil
}

func (r *PartRepository) UpsertPart(ctx context.Context, part ports.Part) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	var existing int64
	if err := db.Model(&model.Part{}).Where("part_number = ?", part.PartNumber).Count(&existing).Error; err != nil {
		return false, errs.Wrap(err, "count part")
	}

	row := toPartRow(part)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "part_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "model", "version", "part_site", "active", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return false, errs.Wrap(err, "upsert part")
	}
	return existing == 0, nil
}

func toPartRow(part ports.Part) model.Part {
	return model.Part{
		PartNumber:  part.PartNumber,
		Description: part.Description,
		Model:       part.Model,
		Version:     part.Version,
		PartSite:    part.PartSite,
		Active:      part.Active,
		CreatedAt:   part.CreatedAt,
		UpdatedAt:   part.UpdatedAt,
	}
}

func mapPart(row model.Part) ports.Part {
	return ports.Part{
		ID:          row.ID,
		PartNumber:  row.PartNumber,
		Description: row.Description,
		Model:       row.Model,
		Version:     row.Version,
		PartSite:    row.PartSite,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
