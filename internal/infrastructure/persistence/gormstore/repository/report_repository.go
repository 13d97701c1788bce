package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"qctrack/internal/errs"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	"qctrack/internal/ports"
)

// ReportRepository runs the aggregate queries behind LAR and defect-trend reports.
// Work weeks are stored zero-padded, so string range comparison is week order within a
// fiscal year. Every aggregate groups by fiscal year as well as week.
type ReportRepository struct {
	db *gorm.DB
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) AcceptanceCounts(ctx context.Context, filter ports.ReportFilter) ([]ports.AcceptanceCount, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := applyReportFilter(db.Model(&model.InspectionRecord{}), filter).
		Select(
			"machine_line_no, fiscal_year, work_week, COUNT(*) AS judged, SUM(CASE WHEN judgment = ? THEN 1 ELSE 0 END) AS accepted",
			"ACCEPT",
		).
		Where("judgment IS NOT NULL").
		Group("machine_line_no, fiscal_year, work_week").
		Order("machine_line_no asc, fiscal_year asc, work_week asc")

	var rows []ports.AcceptanceCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "aggregate acceptance counts")
	}
	return rows, nil
}

func (r *ReportRepository) DefectTotals(ctx context.Context, filter ports.ReportFilter) ([]ports.DefectTotal, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := applyReportFilter(db.Model(&model.DefectRecord{}), filter).
		Select("fiscal_year, work_week, defect_code, SUM(qty) AS qty").
		Group("fiscal_year, work_week, defect_code").
		Order("fiscal_year asc, work_week asc, defect_code asc")

	var rows []ports.DefectTotal
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "aggregate defect totals")
	}
	return rows, nil
}

func (r *ReportRepository) SampleTotals(ctx context.Context, filter ports.ReportFilter) ([]ports.SampleTotal, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := applyReportFilter(db.Model(&model.InspectionRecord{}), filter).
		Select("fiscal_year, work_week, COALESCE(SUM(sample_qty), 0) AS sampled").
		Group("fiscal_year, work_week").
		Order("fiscal_year asc, work_week asc")

	var rows []ports.SampleTotal
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "aggregate sample totals")
	}
	return rows, nil
}

func applyReportFilter(query *gorm.DB, filter ports.ReportFilter) *gorm.DB {
	if station := strings.TrimSpace(filter.Station); station != "" {
		query = query.Where("station = ?", station)
	}
	if fy := strings.TrimSpace(filter.FiscalYear); fy != "" {
		query = query.Where("fiscal_year = ?", fy)
	}
	if from := strings.TrimSpace(filter.FromWeek); from != "" {
		query = query.Where("work_week >= ?", from)
	}
	if to := strings.TrimSpace(filter.ToWeek); to != "" {
		query = query.Where("work_week <= ?", to)
	}
	return query
}
