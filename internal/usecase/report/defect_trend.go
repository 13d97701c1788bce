package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domainreport "qctrack/internal/domain/report"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

type DefectTrendRow struct {
	FiscalYear string          `json:"fiscal_year"`
	WorkWeek   string          `json:"work_week"`
	DefectCode string          `json:"defect_code"`
	Qty        int64           `json:"qty"`
	Sampled    int64           `json:"sampled"`
	DPPM       decimal.Decimal `json:"dppm"`
}

type WeekTotal struct {
	FiscalYear string          `json:"fiscal_year"`
	WorkWeek   string          `json:"work_week"`
	DefectQty  int64           `json:"defect_qty"`
	Sampled    int64           `json:"sampled"`
	DPPM       decimal.Decimal `json:"dppm"`
}

type DefectTrendReport struct {
	Filter      ports.ReportFilter `json:"filter"`
	Rows        []DefectTrendRow   `json:"rows"`
	Weeks       []WeekTotal        `json:"weeks"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// DefectTrend totals defects per fiscal week and code. DPPM divides by the sample
// quantity of the inspections in the same fiscal year and week.
func (s *Service) DefectTrend(ctx context.Context, filter ports.ReportFilter) (DefectTrendReport, error) {
	if err := checkContext(ctx); err != nil {
		return DefectTrendReport{}, err
	}
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return DefectTrendReport{}, err
	}

	var report DefectTrendReport
	err = s.cached(ctx, cacheKey(NameDefectTrend, filter), &report, func() (any, error) {
		defects, err := s.repo.DefectTotals(ctx, filter)
		if err != nil {
			return nil, errs.WrapStore(err, "load defect totals")
		}
		samples, err := s.repo.SampleTotals(ctx, filter)
		if err != nil {
			return nil, errs.WrapStore(err, "load sample totals")
		}
		return buildDefectTrend(filter, defects, samples, s.now().UTC()), nil
	})
	if err != nil {
		return DefectTrendReport{}, err
	}
	return report, nil
}

type weekKey struct {
	fiscalYear string
	workWeek   string
}

func buildDefectTrend(filter ports.ReportFilter, defects []ports.DefectTotal, samples []ports.SampleTotal, generatedAt time.Time) DefectTrendReport {
	sampled := make(map[weekKey]int64, len(samples))
	for _, s := range samples {
		sampled[weekKey{s.FiscalYear, s.WorkWeek}] = s.Sampled
	}

	report := DefectTrendReport{
		Filter:      filter,
		Rows:        make([]DefectTrendRow, 0, len(defects)),
		Weeks:       []WeekTotal{},
		GeneratedAt: generatedAt,
	}
	weekIndex := make(map[weekKey]int)
	for _, d := range defects {
		key := weekKey{d.FiscalYear, d.WorkWeek}
		week := sampled[key]
		report.Rows = append(report.Rows, DefectTrendRow{
			FiscalYear: d.FiscalYear,
			WorkWeek:   d.WorkWeek,
			DefectCode: d.DefectCode,
			Qty:        d.Qty,
			Sampled:    week,
			DPPM:       domainreport.DPPM(d.Qty, week),
		})

		i, ok := weekIndex[key]
		if !ok {
			i = len(report.Weeks)
			weekIndex[key] = i
			report.Weeks = append(report.Weeks, WeekTotal{FiscalYear: d.FiscalYear, WorkWeek: d.WorkWeek, Sampled: week})
		}
		report.Weeks[i].DefectQty += d.Qty
	}
	for i := range report.Weeks {
		report.Weeks[i].DPPM = domainreport.DPPM(report.Weeks[i].DefectQty, report.Weeks[i].Sampled)
	}
	return report
}
