/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qctrack/internal/bootstrap"
	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
	"qctrack/internal/usecase/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Line acceptance and defect trend reports",
}

var reportLARCmd = &cobra.Command{
	Use:   "lar",
	Short: "Show the lot acceptance rate per machine line and work week",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := svc.Reports.LineAcceptanceRate(ctx, reportFilterFromFlags(cmd))
		if err != nil {
			logging.Error(ctx, "build lar report failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "build lar report")
		}

		rows := make([][]string, 0, len(result.Rows)+1)
		for _, row := range append(result.Rows, result.Total) {
			rows = append(rows, []string{
				row.MachineLineNo,
				row.FiscalYear,
				row.WorkWeek,
				strconv.FormatInt(row.Judged, 10),
				strconv.FormatInt(row.Accepted, 10),
				strconv.FormatInt(row.Rejected, 10),
				row.Rate.StringFixed(2) + "%",
			})
		}
		headers := []string{"line", "fy", "week", "judged", "accepted", "rejected", "lar"}
		if err := renderTable(cmd.OutOrStdout(), headers, rows, true); err != nil {
			return errs.Wrap(err, "write lar table")
		}
		return nil
	}),
}

var reportDefectsCmd = &cobra.Command{
	Use:   "defects",
	Short: "Show defect totals and DPPM per work week",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := svc.Reports.DefectTrend(ctx, reportFilterFromFlags(cmd))
		if err != nil {
			logging.Error(ctx, "build defect trend failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "build defect trend")
		}

		if len(result.Rows) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no defects"); err != nil {
				return errs.Wrap(err, "write defect trend output")
			}
			return nil
		}

		rows := make([][]string, 0, len(result.Rows))
		for _, row := range result.Rows {
			rows = append(rows, []string{
				row.FiscalYear,
				row.WorkWeek,
				row.DefectCode,
				strconv.FormatInt(row.Qty, 10),
				strconv.FormatInt(row.Sampled, 10),
				row.DPPM.StringFixed(2),
			})
		}
		if err := renderTable(cmd.OutOrStdout(), []string{"fy", "week", "code", "qty", "sampled", "dppm"}, rows, false); err != nil {
			return errs.Wrap(err, "write defect trend table")
		}

		weeks := make([][]string, 0, len(result.Weeks))
		for _, week := range result.Weeks {
			weeks = append(weeks, []string{
				week.FiscalYear,
				week.WorkWeek,
				strconv.FormatInt(week.DefectQty, 10),
				strconv.FormatInt(week.Sampled, 10),
				week.DPPM.StringFixed(2),
			})
		}
		if err := renderTable(cmd.OutOrStdout(), []string{"fy", "week", "defects", "sampled", "dppm"}, weeks, false); err != nil {
			return errs.Wrap(err, "write week totals table")
		}
		return nil
	}),
}

var reportExportCmd = &cobra.Command{
	Use:   "export <lar|defect-trend>",
	Short: "Export a report as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name := strings.TrimSpace(cmd.Flags().Arg(0))
		encoding, _ := cmd.Flags().GetString("encoding")
		if strings.TrimSpace(encoding) == "" {
			encoding = app.Config.Report.CSVEncoding
		}
		output, _ := cmd.Flags().GetString("output")

		var w io.Writer = cmd.OutOrStdout()
		if output = strings.TrimSpace(output); output != "" && output != "-" {
			file, err := os.Create(output)
			if err != nil {
				return errs.Wrap(err, "create export file")
			}
			defer file.Close()
			w = file
		}

		if err := svc.Reports.ExportCSV(ctx, w, name, reportFilterFromFlags(cmd), encoding); err != nil {
			logging.Error(ctx, "export report failed", slog.Any("err", errs.Loggable(err)), slog.String("report", name))
			return errs.Wrap(err, "export report")
		}

		if w != cmd.OutOrStdout() {
			logging.Info(ctx, "report exported", slog.String("report", name), slog.String("path", output))
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportLARCmd, reportDefectsCmd, reportExportCmd)

	for _, c := range []*cobra.Command{reportLARCmd, reportDefectsCmd, reportExportCmd} {
		c.Flags().String("station", "", "Filter by station")
		c.Flags().String("fiscal-year", "", "Fiscal year, for example 2026")
		c.Flags().String("from-week", "", "First work week, inclusive")
		c.Flags().String("to-week", "", "Last work week, inclusive")
	}
	reportExportCmd.Flags().String("encoding", "", report.EncodingUTF8+" or "+report.EncodingShiftJIS+", defaults to report.csv_encoding")
	reportExportCmd.Flags().StringP("output", "o", "", "Output file, defaults to stdout")
}

func reportFilterFromFlags(cmd *cobra.Command) ports.ReportFilter {
	station, _ := cmd.Flags().GetString("station")
	fiscalYear, _ := cmd.Flags().GetString("fiscal-year")
	fromWeek, _ := cmd.Flags().GetString("from-week")
	toWeek, _ := cmd.Flags().GetString("to-week")
	return ports.ReportFilter{
		Station:    station,
		FiscalYear: fiscalYear,
		FromWeek:   fromWeek,
		ToWeek:     toWeek,
	}
}
