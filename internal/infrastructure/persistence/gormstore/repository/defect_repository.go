package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qctrack/internal/errs"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	"qctrack/internal/ports"
)

type DefectRepository struct {
	db *gorm.DB
}

var _ ports.DefectRepository = (*DefectRepository)(nil)

func NewDefectRepository(db *gorm.DB) *DefectRepository {
	return &DefectRepository{db: db}
}

func (r *DefectRepository) CreateDefect(ctx context.Context, record ports.DefectRecord) (ports.DefectRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.DefectRecord{}, err
	}

	row := model.DefectRecord{
		InspectionID:   record.InspectionID,
		Station:        record.Station,
		LotNumber:      record.LotNumber,
		ItemNumber:     record.ItemNumber,
		MachineLineNo:  record.MachineLineNo,
		DefectCode:     record.DefectCode,
		DefectCategory: record.DefectCategory,
		Qty:            record.Qty,
		FoundAt:        record.FoundAt,
		FiscalYear:     record.FiscalYear,
		WorkWeek:       record.WorkWeek,
		Remark:         record.Remark,
		CreatedBy:      record.CreatedBy,
		UpdatedBy:      record.UpdatedBy,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
	if len(record.Attributes) > 0 {
		row.Attributes = datatypes.JSON(record.Attributes)
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.DefectRecord{}, wrapWriteError(err, "insert defect record")
	}
	return mapDefect(row), nil
}

func (r *DefectRepository) GetDefect(ctx context.Context, id uint64) (ports.DefectRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.DefectRecord{}, err
	}

	var row model.DefectRecord
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.DefectRecord{}, ports.ErrDefectNotFound
		}
		return ports.DefectRecord{}, errs.Wrap(err, "query defect record")
	}
	return mapDefect(row), nil
}

func (r *DefectRepository) ListDefects(ctx context.Context, filter ports.DefectFilter) ([]ports.DefectRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.DefectRecord{})
	if station := strings.TrimSpace(filter.Station); station != "" {
		query = query.Where("station = ?", station)
	}
	if lot := strings.TrimSpace(filter.LotNumber); lot != "" {
		query = query.Where("lot_number = ?", lot)
	}
	if code := strings.TrimSpace(filter.DefectCode); code != "" {
		query = query.Where("defect_code = ?", code)
	}
	if fy := strings.TrimSpace(filter.FiscalYear); fy != "" {
		query = query.Where("fiscal_year = ?", fy)
	}
	if ww := strings.TrimSpace(filter.WorkWeek); ww != "" {
		query = query.Where("work_week = ?", ww)
	}
	if filter.InspectionID != nil {
		query = query.Where("inspection_id = ?", *filter.InspectionID)
	}

	var rows []model.DefectRecord
	if err := paginate(query.Order("id desc"), filter.Limit, filter.Offset).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query defect records")
	}

	items := make([]ports.DefectRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapDefect(row))
	}
	return items, nil
}

func (r *DefectRepository) UpdateDefect(ctx context.Context, id uint64, update ports.DefectUpdate) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	values := map[string]any{
		"updated_by": update.UpdatedBy,
		"updated_at": update.UpdatedAt,
	}
	setIf(values, "defect_code", update.DefectCode)
	setIf(values, "defect_category", update.DefectCategory)
	setIf(values, "qty", update.Qty)
	setIf(values, "remark", update.Remark)
	if len(update.Attributes) > 0 {
		values["attributes"] = datatypes.JSON(update.Attributes)
	}

	result := db.Model(&model.DefectRecord{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update defect record")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDefectNotFound
	}
	return nil
}

func (r *DefectRepository) DeleteDefect(ctx context.Context, id uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&model.DefectRecord{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete defect record")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDefectNotFound
	}
	return nil
}

func mapDefect(row model.DefectRecord) ports.DefectRecord {
	var attributes json.RawMessage
	if len(row.Attributes) > 0 {
		attributes = json.RawMessage(row.Attributes)
	}
	return ports.DefectRecord{
		ID:             row.ID,
		InspectionID:   row.InspectionID,
		Station:        row.Station,
		LotNumber:      row.LotNumber,
		ItemNumber:     row.ItemNumber,
		MachineLineNo:  row.MachineLineNo,
		DefectCode:     row.DefectCode,
		DefectCategory: row.DefectCategory,
		Qty:            row.Qty,
		FoundAt:        row.FoundAt,
		FiscalYear:     row.FiscalYear,
		WorkWeek:       row.WorkWeek,
		Remark:         row.Remark,
		Attributes:     attributes,
		CreatedBy:      row.CreatedBy,
		UpdatedBy:      row.UpdatedBy,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
