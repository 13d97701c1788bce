package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"

	"qctrack/internal/errs"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	"qctrack/internal/ports"
)

type InspectionRepository struct {
	db *gorm.DB
}

var _ ports.InspectionRepository = (*InspectionRepository)(nil)

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

func (r *InspectionRepository) CreateInspection(ctx context.Context, record ports.InspectionRecord) (ports.InspectionRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.InspectionRecord{}, err
	}

	row := toInspectionRow(record)
	row.ID = 0
	if err := db.Create(&row).Error; err != nil {
		return ports.InspectionRecord{}, wrapWriteError(err, "insert inspection record")
	}
	return mapInspection(row), nil
}

func (r *InspectionRepository) GetInspection(ctx context.Context, id uint64) (ports.InspectionRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.InspectionRecord{}, err
	}
	return takeInspection(db.Where("id = ?", id))
}

func (r *InspectionRepository) GetInspectionByNumber(ctx context.Context, number string) (ports.InspectionRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.InspectionRecord{}, err
	}
	return takeInspection(db.Where("inspection_number = ?", strings.TrimSpace(number)))
}

func (r *InspectionRepository) ListInspections(ctx context.Context, filter ports.InspectionFilter) ([]ports.InspectionRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.InspectionRecord{})
	if station := strings.TrimSpace(filter.Station); station != "" {
		query = query.Where("station = ?", station)
	}
	if lot := strings.TrimSpace(filter.LotNumber); lot != "" {
		query = query.Where("lot_number = ?", lot)
	}
	if fy := strings.TrimSpace(filter.FiscalYear); fy != "" {
		query = query.Where("fiscal_year = ?", fy)
	}
	if ww := strings.TrimSpace(filter.WorkWeek); ww != "" {
		query = query.Where("work_week = ?", ww)
	}
	switch judgment := strings.TrimSpace(filter.Judgment); judgment {
	case "":
	case "PENDING":
		query = query.Where("judgment IS NULL")
	default:
		query = query.Where("judgment = ?", judgment)
	}

	var rows []model.InspectionRecord
	if err := paginate(query.Order("id desc"), filter.Limit, filter.Offset).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query inspection records")
	}

	items := make([]ports.InspectionRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapInspection(row))
	}
	return items, nil
}

func (r *InspectionRepository) ListInspectionNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var numbers []string
	if err := db.Model(&model.InspectionRecord{}).
		Where("inspection_number LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("inspection_number asc").
		Pluck("inspection_number", &numbers).Error; err != nil {
		return nil, errs.Wrap(err, "query inspection numbers by prefix")
	}
	return numbers, nil
}

func (r *InspectionRepository) MaxSamplingRound(ctx context.Context, station string, lotNumber string) (int, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var maxRound sql.NullInt64
	if err := db.Model(&model.InspectionRecord{}).
		Select("MAX(round)").
		Where("station = ? AND lot_number = ?", station, lotNumber).
		Row().
		Scan(&maxRound); err != nil {
		return 0, errs.Wrap(err, "query max sampling round")
	}
	if !maxRound.Valid {
		return 0, nil
	}
	return int(maxRound.Int64), nil
}

func (r *InspectionRepository) UpdateInspection(ctx context.Context, id uint64, update ports.InspectionUpdate) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	values := map[string]any{
		"updated_by": update.UpdatedBy,
		"updated_at": update.UpdatedAt,
	}
	setIf(values, "part_site", update.PartSite)
	setIf(values, "item_number", update.ItemNumber)
	setIf(values, "model", update.Model)
	setIf(values, "version", update.Version)
	setIf(values, "machine_line_no", update.MachineLineNo)
	setIf(values, "sampling_reason_id", update.SamplingReasonID)
	setIf(values, "lot_qty", update.LotQty)
	setIf(values, "shift", update.Shift)
	setIf(values, "inspection_line_id", update.InspectionLineID)
	setIf(values, "qc_ref", update.QCRef)
	setIf(values, "sample_qty", update.SampleQty)
	setIf(values, "defect_qty", update.DefectQty)
	setIf(values, "judgment", update.Judgment)

	result := db.Model(&model.InspectionRecord{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return wrapWriteError(result.Error, "update inspection record")
	}
	if result.RowsAffected == 0 {
		return ports.ErrInspectionNotFound
	}
	return nil
}

func (r *InspectionRepository) DeleteInspection(ctx context.Context, id uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&model.InspectionRecord{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete inspection record")
	}
	if result.RowsAffected == 0 {
		return ports.ErrInspectionNotFound
	}
	return nil
}

func takeInspection(query *gorm.DB) (ports.InspectionRecord, error) {
	var row model.InspectionRecord
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.InspectionRecord{}, ports.ErrInspectionNotFound
		}
		return ports.InspectionRecord{}, errs.Wrap(err, "query inspection record")
	}
	return mapInspection(row), nil
}

func setIf[T any](values map[string]any, column string, value *T) {
	if value != nil {
		values[column] = *value
	}
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

func toInspectionRow(record ports.InspectionRecord) model.InspectionRecord {
	return model.InspectionRecord{
		ID:                  record.ID,
		Station:             record.Station,
		InspectionNumber:    record.InspectionNumber,
		InspectionNumberRef: record.InspectionNumberRef,
		LotNumber:           record.LotNumber,
		PartSite:            record.PartSite,
		ItemNumber:          record.ItemNumber,
		Model:               record.Model,
		Version:             record.Version,
		MachineLineNo:       record.MachineLineNo,
		SamplingReasonID:    record.SamplingReasonID,
		LotQty:              record.LotQty,
		Shift:               record.Shift,
		InspectionLineID:    record.InspectionLineID,
		QCRef:               record.QCRef,
		SampleQty:           record.SampleQty,
		DefectQty:           record.DefectQty,
		Judgment:            record.Judgment,
		FiscalYear:          record.FiscalYear,
		WorkWeek:            record.WorkWeek,
		Round:               record.Round,
		InspectionDate:      record.InspectionDate,
		CreatedBy:           record.CreatedBy,
		UpdatedBy:           record.UpdatedBy,
		CreatedAt:           record.CreatedAt,
		UpdatedAt:           record.UpdatedAt,
	}
}

func mapInspection(row model.InspectionRecord) ports.InspectionRecord {
	return ports.InspectionRecord{
		ID:                  row.ID,
		Station:             row.Station,
		InspectionNumber:    row.InspectionNumber,
		InspectionNumberRef: row.InspectionNumberRef,
		LotNumber:           row.LotNumber,
		PartSite:            row.PartSite,
		ItemNumber:          row.ItemNumber,
		Model:               row.Model,
		Version:             row.Version,
		MachineLineNo:       row.MachineLineNo,
		SamplingReasonID:    row.SamplingReasonID,
		LotQty:              row.LotQty,
		Shift:               row.Shift,
		InspectionLineID:    row.InspectionLineID,
		QCRef:               row.QCRef,
		SampleQty:           row.SampleQty,
		DefectQty:           row.DefectQty,
		Judgment:            row.Judgment,
		FiscalYear:          row.FiscalYear,
		WorkWeek:            row.WorkWeek,
		Round:               row.Round,
		InspectionDate:      row.InspectionDate,
		CreatedBy:           row.CreatedBy,
		UpdatedBy:           row.UpdatedBy,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
