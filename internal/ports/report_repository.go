package ports

import "context"

type ReportFilter struct {
	Station    string
	FiscalYear string
	FromWeek   string
	ToWeek     string
}

// Aggregates are keyed by fiscal year and work week: week numbers repeat every year.
type AcceptanceCount struct {
	MachineLineNo string
	FiscalYear    string
	WorkWeek      string
	Judged        int64
	Accepted      int64
}

type DefectTotal struct {
	FiscalYear string
	WorkWeek   string
	DefectCode string
	Qty        int64
}

type SampleTotal struct {
	FiscalYear string
	WorkWeek   string
	Sampled    int64
}

type ReportRepository interface {
	AcceptanceCounts(ctx context.Context, filter ReportFilter) ([]AcceptanceCount, error)
	DefectTotals(ctx context.Context, filter ReportFilter) ([]DefectTotal, error)
	SampleTotals(ctx context.Context, filter ReportFilter) ([]SampleTotal, error)
}
