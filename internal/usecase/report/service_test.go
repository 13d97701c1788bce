package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	domaininspection "qctrack/internal/domain/inspection"
	"qctrack/internal/ports"
)

type stubReportRepo struct {
	counts  []ports.AcceptanceCount
	defects []ports.DefectTotal
	samples []ports.SampleTotal
	err     error
	calls   int
	filters []ports.ReportFilter
}

func (r *stubReportRepo) AcceptanceCounts(_ context.Context, filter ports.ReportFilter) ([]ports.AcceptanceCount, error) {
	r.calls++
	r.filters = append(r.filters, filter)
	return r.counts, r.err
}

func (r *stubReportRepo) DefectTotals(_ context.Context, filter ports.ReportFilter) ([]ports.DefectTotal, error) {
	r.calls++
	r.filters = append(r.filters, filter)
	return r.defects, r.err
}

func (r *stubReportRepo) SampleTotals(_ context.Context, _ ports.ReportFilter) ([]ports.SampleTotal, error) {
	return r.samples, r.err
}

type testCache struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func larFixture() *stubReportRepo {
	return &stubReportRepo{
		counts: []ports.AcceptanceCount{
			{MachineLineNo: "L1", FiscalYear: "2026", WorkWeek: "06", Judged: 3, Accepted: 2},
			{MachineLineNo: "L1", FiscalYear: "2026", WorkWeek: "07", Judged: 4, Accepted: 4},
			{MachineLineNo: "L2", FiscalYear: "2026", WorkWeek: "06", Judged: 1, Accepted: 0},
		},
		defects: []ports.DefectTotal{
			{FiscalYear: "2026", WorkWeek: "06", DefectCode: "SCR", Qty: 3},
			{FiscalYear: "2026", WorkWeek: "06", DefectCode: "傷", Qty: 1},
			{FiscalYear: "2026", WorkWeek: "07", DefectCode: "SCR", Qty: 2},
		},
		samples: []ports.SampleTotal{
			{FiscalYear: "2026", WorkWeek: "06", Sampled: 2000},
		},
	}
}

func TestLineAcceptanceRate(t *testing.T) {
	repo := larFixture()
	svc := NewService(repo, nil, 0)

	report, err := svc.LineAcceptanceRate(context.Background(), ports.ReportFilter{Station: "oqa", FiscalYear: "2026", FromWeek: "6", ToWeek: "7"})
	if err != nil {
		t.Fatalf("LineAcceptanceRate() error = %v", err)
	}
	if got := repo.filters[0]; got.Station != "OQA" || got.FromWeek != "06" || got.ToWeek != "07" {
		t.Fatalf("normalized filter = %+v", got)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(report.Rows))
	}
	if got := report.Rows[0]; got.Rejected != 1 || got.Rate.String() != "66.67" {
		t.Fatalf("rows[0] = %+v rate %s", got, got.Rate)
	}
	if got := report.Rows[2].Rate.String(); got != "0" {
		t.Fatalf("rows[2] rate = %s, want 0", got)
	}
	if report.Total.Judged != 8 || report.Total.Accepted != 6 || report.Total.Rate.String() != "75" {
		t.Fatalf("total = %+v rate %s", report.Total, report.Total.Rate)
	}
}

func TestLineAcceptanceRateUsesCache(t *testing.T) {
	repo := larFixture()
	cache := newTestCache()
	svc := NewService(repo, cache, 5*time.Minute)
	ctx := context.Background()

	first, err := svc.LineAcceptanceRate(ctx, ports.ReportFilter{Station: "OQA"})
	if err != nil {
		t.Fatalf("LineAcceptanceRate() error = %v", err)
	}
	second, err := svc.LineAcceptanceRate(ctx, ports.ReportFilter{Station: "oqa"})
	if err != nil {
		t.Fatalf("LineAcceptanceRate() error = %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("repository calls = %d, want 1", repo.calls)
	}
	if !second.Total.Rate.Equal(first.Total.Rate) || len(second.Rows) != len(first.Rows) {
		t.Fatalf("cached report differs: %+v vs %+v", second, first)
	}
	if ttl := cache.ttls["report:lar:OQA:::"]; ttl != 5*time.Minute {
		t.Fatalf("cache ttl = %v, keys = %v", ttl, cache.ttls)
	}

	if _, err := svc.LineAcceptanceRate(ctx, ports.ReportFilter{Station: "SIV"}); err != nil {
		t.Fatalf("LineAcceptanceRate(SIV) error = %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("repository calls = %d, want 2 for a new filter", repo.calls)
	}
}

func TestDefectTrend(t *testing.T) {
	svc := NewService(larFixture(), nil, 0)

	report, err := svc.DefectTrend(context.Background(), ports.ReportFilter{})
	if err != nil {
		t.Fatalf("DefectTrend() error = %v", err)
	}
	if len(report.Rows) != 3 || len(report.Weeks) != 2 {
		t.Fatalf("DefectTrend() rows=%d weeks=%d", len(report.Rows), len(report.Weeks))
	}
	if got := report.Rows[0].DPPM.String(); got != "1500" {
		t.Fatalf("rows[0] dppm = %s, want 1500", got)
	}
	if got := report.Weeks[0]; got.DefectQty != 4 || got.DPPM.String() != "2000" {
		t.Fatalf("weeks[0] = %+v dppm %s", got, got.DPPM)
	}
	if got := report.Weeks[1]; got.Sampled != 0 || !got.DPPM.IsZero() {
		t.Fatalf("weeks[1] without samples = %+v", got)
	}
}

func TestDefectTrendKeepsFiscalYearsApart(t *testing.T) {
	repo := &stubReportRepo{
		defects: []ports.DefectTotal{
			{FiscalYear: "2025", WorkWeek: "06", DefectCode: "SCR", Qty: 1},
			{FiscalYear: "2026", WorkWeek: "06", DefectCode: "SCR", Qty: 4},
		},
		samples: []ports.SampleTotal{
			{FiscalYear: "2025", WorkWeek: "06", Sampled: 1000},
			{FiscalYear: "2026", WorkWeek: "06", Sampled: 500},
		},
	}
	svc := NewService(repo, nil, 0)

	report, err := svc.DefectTrend(context.Background(), ports.ReportFilter{Station: "OQA"})
	if err != nil {
		t.Fatalf("DefectTrend() error = %v", err)
	}
	if len(report.Rows) != 2 || len(report.Weeks) != 2 {
		t.Fatalf("DefectTrend() rows=%d weeks=%d, want 2 and 2", len(report.Rows), len(report.Weeks))
	}
	if got := report.Weeks[0]; got.FiscalYear != "2025" || got.Sampled != 1000 || got.DPPM.String() != "1000" {
		t.Fatalf("weeks[0] = %+v dppm %s", got, got.DPPM)
	}
	if got := report.Weeks[1]; got.FiscalYear != "2026" || got.Sampled != 500 || got.DPPM.String() != "8000" {
		t.Fatalf("weeks[1] = %+v dppm %s", got, got.DPPM)
	}
}

func TestReportFilterValidation(t *testing.T) {
	svc := NewService(larFixture(), nil, 0)
	ctx := context.Background()

	cases := []struct {
		filter ports.ReportFilter
		want   error
	}{
		{ports.ReportFilter{FiscalYear: "26"}, ErrInvalidFiscalYear},
		{ports.ReportFilter{FromWeek: "60"}, domaininspection.ErrInvalidWorkWeek},
		{ports.ReportFilter{FiscalYear: "2026", FromWeek: "10", ToWeek: "2"}, ErrInvalidWeekRange},
		{ports.ReportFilter{FromWeek: "01", ToWeek: "06"}, ErrWeekRangeNeedsFiscalYear},
		{ports.ReportFilter{ToWeek: "06"}, ErrWeekRangeNeedsFiscalYear},
		{ports.ReportFilter{Station: "TOOLONG"}, domaininspection.ErrInvalidStation},
	}
	for _, tc := range cases {
		if _, err := svc.LineAcceptanceRate(ctx, tc.filter); !errors.Is(err, tc.want) {
			t.Fatalf("LineAcceptanceRate(%+v) error = %v, want %v", tc.filter, err, tc.want)
		}
	}
}

func TestReportStoreError(t *testing.T) {
	repo := larFixture()
	repo.err = errors.New("connection reset")
	svc := NewService(repo, newTestCache(), time.Minute)

	if _, err := svc.DefectTrend(context.Background(), ports.ReportFilter{}); err == nil {
		t.Fatalf("DefectTrend() expected error")
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewService(larFixture(), nil, 0)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := svc.ExportCSV(ctx, &buf, NameLAR, ports.ReportFilter{}, "utf8"); err != nil {
		t.Fatalf("ExportCSV(lar) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("ExportCSV(lar) lines = %d, want header + 3 rows + total", len(lines))
	}
	if lines[0] != "machine_line_no,fiscal_year,work_week,judged,accepted,rejected,lar_percent" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "L1,2026,06,3,2,1,66.67" {
		t.Fatalf("first line = %q", lines[1])
	}
	if lines[4] != "TOTAL,,,8,6,2,75.00" {
		t.Fatalf("total line = %q", lines[4])
	}

	if err := svc.ExportCSV(ctx, &buf, "yield", ports.ReportFilter{}, ""); !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("ExportCSV(yield) error = %v", err)
	}
	if err := svc.ExportCSV(ctx, &buf, NameLAR, ports.ReportFilter{}, "latin1"); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("ExportCSV(latin1) error = %v", err)
	}
}

func TestExportCSVShiftJIS(t *testing.T) {
	svc := NewService(larFixture(), nil, 0)

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), &buf, NameDefectTrend, ports.ReportFilter{}, "shift_jis"); err != nil {
		t.Fatalf("ExportCSV(shift_jis) error = %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("傷")) {
		t.Fatalf("output still contains UTF-8 bytes")
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), buf.Bytes())
	if err != nil {
		t.Fatalf("decode shift_jis: %v", err)
	}
	if !strings.Contains(string(decoded), "2026,06,傷,1,2000,500.00") {
		t.Fatalf("decoded csv = %q", decoded)
	}
}
