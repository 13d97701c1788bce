package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

var ErrUnsupportedEncoding = errs.WithKind(errors.New("unsupported csv encoding"), errs.KindValidation)

// NormalizeEncoding maps accepted spellings to EncodingUTF8 or EncodingShiftJIS.
func NormalizeEncoding(encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
}

// ExportCSV writes report name as CSV to w. Shift_JIS output is for spreadsheet tools
// on Japanese Windows that do not detect UTF-8.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, name string, filter ports.ReportFilter, encoding string) error {
	enc, err := NormalizeEncoding(encoding)
	if err != nil {
		return err
	}

	var records [][]string
	switch name {
	case NameLAR:
		report, err := s.LineAcceptanceRate(ctx, filter)
		if err != nil {
			return err
		}
		records = larRecords(report)
	case NameDefectTrend:
		report, err := s.DefectTrend(ctx, filter)
		if err != nil {
			return err
		}
		records = defectTrendRecords(report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}

	out := w
	var encoder io.WriteCloser
	if enc == EncodingShiftJIS {
		encoder = transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
		out = encoder
	}

	cw := csv.NewWriter(out)
	if err := cw.WriteAll(records); err != nil {
		return errs.Wrap(err, "write csv")
	}
	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return errs.Wrap(err, "flush shift_jis encoder")
		}
	}
	return nil
}

func larRecords(report LARReport) [][]string {
	records := [][]string{{"machine_line_no", "fiscal_year", "work_week", "judged", "accepted", "rejected", "lar_percent"}}
	for _, row := range append(report.Rows, report.Total) {
		records = append(records, []string{
			row.MachineLineNo,
			row.FiscalYear,
			row.WorkWeek,
			strconv.FormatInt(row.Judged, 10),
			strconv.FormatInt(row.Accepted, 10),
			strconv.FormatInt(row.Rejected, 10),
			row.Rate.StringFixed(2),
		})
	}
	return records
}

func defectTrendRecords(report DefectTrendReport) [][]string {
	records := [][]string{{"fiscal_year", "work_week", "defect_code", "qty", "sampled", "dppm"}}
	for _, row := range report.Rows {
		records = append(records, []string{
			row.FiscalYear,
			row.WorkWeek,
			row.DefectCode,
			strconv.FormatInt(row.Qty, 10),
			strconv.FormatInt(row.Sampled, 10),
			row.DPPM.StringFixed(2),
		})
	}
	return records
}
