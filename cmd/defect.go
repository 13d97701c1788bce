/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"qctrack/internal/bootstrap"
	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
	"qctrack/internal/usecase/defect"
)

var defectCmd = &cobra.Command{
	Use:   "defect",
	Short: "Record and list defects",
}

var defectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a defect, optionally linked to an inspection",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		flags := cmd.Flags()
		station, _ := flags.GetString("station")
		lot, _ := flags.GetString("lot")
		item, _ := flags.GetString("item")
		line, _ := flags.GetString("line")
		code, _ := flags.GetString("code")
		category, _ := flags.GetString("category")
		qty, _ := flags.GetInt("qty")
		remark, _ := flags.GetString("remark")
		attributes, _ := flags.GetString("attributes")
		userID, _ := flags.GetUint64("user")

		input := defect.RecordDefectInput{
			Station:        station,
			LotNumber:      lot,
			ItemNumber:     item,
			MachineLineNo:  line,
			DefectCode:     code,
			DefectCategory: category,
			Qty:            qty,
			Remark:         remark,
			UserID:         userID,
		}
		if flags.Changed("inspection") {
			inspectionID, _ := flags.GetUint64("inspection")
			input.InspectionID = &inspectionID
		}
		if attributes != "" {
			input.Attributes = json.RawMessage(attributes)
		}

		created, err := svc.Defects.RecordDefect(ctx, input)
		if err != nil {
			logging.Error(ctx, "record defect failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "record defect")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"recorded defect: id=%d code=%s qty=%d week=%s-W%s\n",
			created.ID,
			created.DefectCode,
			created.Qty,
			created.FiscalYear,
			created.WorkWeek,
		); err != nil {
			return errs.Wrap(err, "write add output")
		}
		return nil
	}),
}

var defectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List defects",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		flags := cmd.Flags()
		station, _ := flags.GetString("station")
		lot, _ := flags.GetString("lot")
		code, _ := flags.GetString("code")
		fiscalYear, _ := flags.GetString("fiscal-year")
		workWeek, _ := flags.GetString("work-week")
		limit, _ := flags.GetInt("limit")

		filter := ports.DefectFilter{
			Station:    station,
			LotNumber:  lot,
			DefectCode: code,
			FiscalYear: fiscalYear,
			WorkWeek:   workWeek,
			Limit:      limit,
		}
		if flags.Changed("inspection") {
			inspectionID, _ := flags.GetUint64("inspection")
			filter.InspectionID = &inspectionID
		}

		items, err := svc.Defects.ListDefects(ctx, filter)
		if err != nil {
			logging.Error(ctx, "list defects failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list defects")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no defects"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			inspectionRef := "-"
			if item.InspectionID != nil {
				inspectionRef = strconv.FormatUint(*item.InspectionID, 10)
			}
			rows = append(rows, []string{
				strconv.FormatUint(item.ID, 10),
				inspectionRef,
				item.Station,
				item.LotNumber,
				item.DefectCode,
				item.DefectCategory,
				strconv.Itoa(item.Qty),
				item.FiscalYear + "-W" + item.WorkWeek,
			})
		}
		headers := []string{"id", "inspection", "station", "lot", "code", "category", "qty", "week"}
		if err := renderTable(cmd.OutOrStdout(), headers, rows, false); err != nil {
			return errs.Wrap(err, "write list table")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(defectCmd)
	defectCmd.AddCommand(defectAddCmd, defectListCmd)

	addFlags := defectAddCmd.Flags()
	addFlags.Uint64("inspection", 0, "Linked inspection id; station, lot, item and line default from it")
	addFlags.String("station", "", "Station code")
	addFlags.String("lot", "", "Lot number")
	addFlags.String("item", "", "Item number")
	addFlags.String("line", "", "Machine line number")
	addFlags.String("code", "", "Defect code")
	addFlags.String("category", "", "COSMETIC, FUNCTIONAL, DIMENSIONAL, PACKAGING or OTHER")
	addFlags.Int("qty", 1, "Defect quantity")
	addFlags.String("remark", "", "Free-form remark")
	addFlags.String("attributes", "", "JSON object with extra attributes")
	addFlags.Uint64("user", 0, "Acting user id")
	_ = defectAddCmd.MarkFlagRequired("code")

	listFlags := defectListCmd.Flags()
	listFlags.Uint64("inspection", 0, "Filter by inspection id")
	listFlags.String("station", "", "Filter by station")
	listFlags.String("lot", "", "Filter by lot number")
	listFlags.String("code", "", "Filter by defect code")
	listFlags.String("fiscal-year", "", "Filter by fiscal year")
	listFlags.String("work-week", "", "Filter by two-digit work week")
	listFlags.Int("limit", 50, "Maximum rows")
}
