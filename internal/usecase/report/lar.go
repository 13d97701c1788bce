package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domainreport "qctrack/internal/domain/report"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

// LARRow is the line acceptance rate of one machine line in one fiscal work week. Only
// judged inspections count.
type LARRow struct {
	MachineLineNo string          `json:"machine_line_no"`
	FiscalYear    string          `json:"fiscal_year"`
	WorkWeek      string          `json:"work_week"`
	Judged        int64           `json:"judged"`
	Accepted      int64           `json:"accepted"`
	Rejected      int64           `json:"rejected"`
	Rate          decimal.Decimal `json:"rate"`
}

type LARReport struct {
	Filter      ports.ReportFilter `json:"filter"`
	Rows        []LARRow           `json:"rows"`
	Total       LARRow             `json:"total"`
	GeneratedAt time.Time          `json:"generated_at"`
}

func (s *Service) LineAcceptanceRate(ctx context.Context, filter ports.ReportFilter) (LARReport, error) {
	if err := checkContext(ctx); err != nil {
		return LARReport{}, err
	}
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return LARReport{}, err
	}

	var report LARReport
	err = s.cached(ctx, cacheKey(NameLAR, filter), &report, func() (any, error) {
		counts, err := s.repo.AcceptanceCounts(ctx, filter)
		if err != nil {
			return nil, errs.WrapStore(err, "load acceptance counts")
		}
		return buildLAR(filter, counts, s.now().UTC()), nil
	})
	if err != nil {
		return LARReport{}, err
	}
	return report, nil
}

func buildLAR(filter ports.ReportFilter, counts []ports.AcceptanceCount, generatedAt time.Time) LARReport {
	report := LARReport{
		Filter:      filter,
		Rows:        make([]LARRow, 0, len(counts)),
		Total:       LARRow{MachineLineNo: "TOTAL"},
		GeneratedAt: generatedAt,
	}
	for _, c := range counts {
		row := larRow(c.MachineLineNo, c.WorkWeek, c.Judged, c.Accepted)
		row.FiscalYear = c.FiscalYear
		report.Rows = append(report.Rows, row)
		report.Total.Judged += c.Judged
		report.Total.Accepted += c.Accepted
	}
	report.Total = larRow("TOTAL", "", report.Total.Judged, report.Total.Accepted)
	return report
}

func larRow(line string, week string, judged int64, accepted int64) LARRow {
	return LARRow{
		MachineLineNo: line,
		WorkWeek:      week,
		Judged:        judged,
		Accepted:      accepted,
		Rejected:      judged - accepted,
		Rate:          domainreport.AcceptanceRate(accepted, judged),
	}
}
