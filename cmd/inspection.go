/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"qctrack/internal/bootstrap"
	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
	"qctrack/internal/usecase/inspection"
)

var inspectionCmd = &cobra.Command{
	Use:     "inspection",
	Aliases: []string{"insp"},
	Short:   "Issue inspection numbers and manage inspection records",
}

var inspectionNumberCmd = &cobra.Command{
	Use:   "number",
	Short: "Preview the next inspection number for a station",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		station, _ := cmd.Flags().GetString("station")
		workWeek, _ := cmd.Flags().GetString("work-week")
		date, err := dateFlag(cmd, "date")
		if err != nil {
			return err
		}

		number, err := svc.Inspections.GenerateInspectionNumber(ctx, station, date, workWeek)
		if err != nil {
			logging.Error(ctx, "generate inspection number failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "generate inspection number")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), number); err != nil {
			return errs.Wrap(err, "write number output")
		}
		return nil
	}),
}

var inspectionRoundCmd = &cobra.Command{
	Use:   "round",
	Short: "Preview the next sampling round for a station and lot",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		station, _ := cmd.Flags().GetString("station")
		lot, _ := cmd.Flags().GetString("lot")

		round, err := svc.Inspections.GetNextSamplingRound(ctx, station, lot)
		if err != nil {
			logging.Error(ctx, "get next sampling round failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "get next sampling round")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), round); err != nil {
			return errs.Wrap(err, "write round output")
		}
		return nil
	}),
}

var inspectionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an inspection record with a fresh number and round",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		flags := cmd.Flags()
		station, _ := flags.GetString("station")
		lot, _ := flags.GetString("lot")
		partSite, _ := flags.GetString("part-site")
		item, _ := flags.GetString("item")
		model, _ := flags.GetString("model")
		version, _ := flags.GetString("version")
		line, _ := flags.GetString("line")
		lotQty, _ := flags.GetInt("lot-qty")
		userID, _ := flags.GetUint64("user")

		input := inspection.CreateInspectionInput{
			Station:          station,
			LotNumber:        lot,
			PartSite:         partSite,
			ItemNumber:       item,
			Model:            model,
			Version:          version,
			MachineLineNo:    line,
			LotQty:           lotQty,
			Shift:            optionalString(cmd, "shift"),
			InspectionLineID: optionalString(cmd, "inspection-line"),
			QCRef:            optionalString(cmd, "qc-ref"),
			SampleQty:        optionalInt(cmd, "sample-qty"),
			DefectQty:        optionalInt(cmd, "defect-qty"),
			Judgment:         optionalString(cmd, "judgment"),
			UserID:           userID,
		}
		if flags.Changed("sampling-reason") {
			reason, _ := flags.GetUint64("sampling-reason")
			input.SamplingReasonID = &reason
		}
		if flags.Changed("date") {
			date, err := dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			input.InspectionDate = &date
		}

		created, err := svc.Inspections.CreateInspection(ctx, input)
		if err != nil {
			logging.Error(ctx, "create inspection failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create inspection")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"created inspection: id=%d number=%s round=%d\n",
			created.ID,
			created.InspectionNumber,
			created.Round,
		); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var inspectionDeriveCmd = &cobra.Command{
	Use:   "derive <id>",
	Short: "Create the downstream record (for example SIV from OQA) of an inspection",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := parseIDArg(cmd.Flags().Args())
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetUint64("user")

		derived, err := svc.Inspections.CreateDerivedRecord(ctx, id, userID)
		if err != nil {
			logging.Error(ctx, "derive inspection failed", slog.Any("err", errs.Loggable(err)), slog.Uint64("source_id", id))
			return errs.Wrap(err, "derive inspection")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"derived inspection: id=%d number=%s ref=%s round=%d\n",
			derived.ID,
			derived.InspectionNumber,
			valueOrDash(derived.InspectionNumberRef),
			derived.Round,
		); err != nil {
			return errs.Wrap(err, "write derive output")
		}
		return nil
	}),
}

var inspectionGetCmd = &cobra.Command{
	Use:   "get <id|number>",
	Short: "Show an inspection record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		key := strings.TrimSpace(cmd.Flags().Arg(0))
		var (
			record ports.InspectionRecord
			err    error
		)
		if id, parseErr := strconv.ParseUint(key, 10, 64); parseErr == nil {
			record, err = svc.Inspections.GetInspection(ctx, id)
		} else {
			record, err = svc.Inspections.GetInspectionByNumber(ctx, key)
		}
		if err != nil {
			logging.Error(ctx, "get inspection failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "get inspection")
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(record); err != nil {
			return errs.Wrap(err, "write inspection output")
		}
		return nil
	}),
}

var inspectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inspection records",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		flags := cmd.Flags()
		station, _ := flags.GetString("station")
		lot, _ := flags.GetString("lot")
		fiscalYear, _ := flags.GetString("fiscal-year")
		workWeek, _ := flags.GetString("work-week")
		judgment, _ := flags.GetString("judgment")
		limit, _ := flags.GetInt("limit")

		items, err := svc.Inspections.ListInspections(ctx, ports.InspectionFilter{
			Station:    station,
			LotNumber:  lot,
			FiscalYear: fiscalYear,
			WorkWeek:   workWeek,
			Judgment:   judgment,
			Limit:      limit,
		})
		if err != nil {
			logging.Error(ctx, "list inspections failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list inspections")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no inspections"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, []string{
				strconv.FormatUint(item.ID, 10),
				item.InspectionNumber,
				item.Station,
				item.LotNumber,
				strconv.Itoa(item.Round),
				item.FiscalYear + "-W" + item.WorkWeek,
				intOrDash(item.SampleQty),
				intOrDash(item.DefectQty),
				valueOrDash(item.Judgment),
				valueOrDash(item.InspectionNumberRef),
			})
		}
		headers := []string{"id", "number", "station", "lot", "round", "week", "sample", "defect", "judgment", "ref"}
		if err := renderTable(cmd.OutOrStdout(), headers, rows, false); err != nil {
			return errs.Wrap(err, "write list table")
		}
		return nil
	}),
}

var inspectionJudgeCmd = &cobra.Command{
	Use:   "judge <id> <ACCEPT|REJECT>",
	Short: "Record the judgment of an inspection",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := parseIDArg(cmd.Flags().Args())
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetUint64("user")

		judged, err := svc.Inspections.JudgeInspection(ctx, id, cmd.Flags().Arg(1), userID)
		if err != nil {
			logging.Error(ctx, "judge inspection failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "judge inspection")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "judged inspection: %s %s\n", judged.InspectionNumber, valueOrDash(judged.Judgment)); err != nil {
			return errs.Wrap(err, "write judge output")
		}
		return nil
	}),
}

var inspectionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an inspection record",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := parseIDArg(cmd.Flags().Args())
		if err != nil {
			return err
		}

		if err := svc.Inspections.DeleteInspection(ctx, id); err != nil {
			logging.Error(ctx, "delete inspection failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete inspection")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted inspection: %d\n", id); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(inspectionCmd)
	inspectionCmd.AddCommand(
		inspectionNumberCmd,
		inspectionRoundCmd,
		inspectionCreateCmd,
		inspectionDeriveCmd,
		inspectionGetCmd,
		inspectionListCmd,
		inspectionJudgeCmd,
		inspectionDeleteCmd,
	)

	inspectionNumberCmd.Flags().String("station", "", "Station code, for example OQA")
	inspectionNumberCmd.Flags().String("date", "", "Reference date YYYY-MM-DD, defaults to today")
	inspectionNumberCmd.Flags().String("work-week", "", "Override the two-digit work week")
	_ = inspectionNumberCmd.MarkFlagRequired("station")

	inspectionRoundCmd.Flags().String("station", "", "Station code")
	inspectionRoundCmd.Flags().String("lot", "", "Lot number")
	_ = inspectionRoundCmd.MarkFlagRequired("station")
	_ = inspectionRoundCmd.MarkFlagRequired("lot")

	createFlags := inspectionCreateCmd.Flags()
	createFlags.String("station", "", "Station code")
	createFlags.String("lot", "", "Lot number")
	createFlags.String("part-site", "", "Part site")
	createFlags.String("item", "", "Item number")
	createFlags.String("model", "", "Model")
	createFlags.String("version", "", "Version")
	createFlags.String("line", "", "Machine line number")
	createFlags.Uint64("sampling-reason", 0, "Sampling reason id")
	createFlags.Int("lot-qty", 0, "Lot quantity")
	createFlags.String("shift", "", "Shift")
	createFlags.String("inspection-line", "", "Inspection line id")
	createFlags.String("qc-ref", "", "QC reference")
	createFlags.Int("sample-qty", 0, "Sample quantity")
	createFlags.Int("defect-qty", 0, "Defect quantity")
	createFlags.String("judgment", "", "ACCEPT or REJECT")
	createFlags.String("date", "", "Inspection date YYYY-MM-DD, defaults to now")
	createFlags.Uint64("user", 0, "Acting user id")
	_ = inspectionCreateCmd.MarkFlagRequired("station")
	_ = inspectionCreateCmd.MarkFlagRequired("lot")

	inspectionDeriveCmd.Flags().Uint64("user", 0, "Acting user id")
	inspectionJudgeCmd.Flags().Uint64("user", 0, "Acting user id")

	listFlags := inspectionListCmd.Flags()
	listFlags.String("station", "", "Filter by station")
	listFlags.String("lot", "", "Filter by lot number")
	listFlags.String("fiscal-year", "", "Filter by fiscal year, for example 2026")
	listFlags.String("work-week", "", "Filter by two-digit work week")
	listFlags.String("judgment", "", "Filter by ACCEPT, REJECT or PENDING")
	listFlags.Int("limit", 50, "Maximum rows")
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now(), nil
	}
	parsed, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
	}
	return parsed, nil
}

func parseIDArg(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("id argument is required")
	}
	id, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}

func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetInt(name)
	return &value
}
