/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"qctrack/internal/bootstrap"
	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
)

var partCmd = &cobra.Command{
	Use:   "part",
	Short: "Manage the part master",
}

var partImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Upsert parts from a YAML file",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		path, _ := cmd.Flags().GetString("file")
		path = strings.TrimSpace(path)
		var source io.Reader = cmd.InOrStdin()
		if path != "" && path != "-" {
			file, err := os.Open(path)
			if err != nil {
				return errs.Wrap(err, "open import file")
			}
			defer file.Close()
			source = file
		}

		result, err := svc.Parts.ImportParts(ctx, source)
		if err != nil {
			logging.Error(ctx, "import parts failed", slog.Any("err", errs.Loggable(err)), slog.String("path", path))
			return errs.Wrap(err, "import parts")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "imported parts: inserted=%d updated=%d\n", result.Inserted, result.Updated); err != nil {
			return errs.Wrap(err, "write import output")
		}
		return nil
	}),
}

var partListCmd = &cobra.Command{
	Use:   "list",
	Short: "List parts",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		activeOnly, _ := cmd.Flags().GetBool("active")
		items, err := svc.Parts.ListParts(ctx, activeOnly)
		if err != nil {
			logging.Error(ctx, "list parts failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list parts")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no parts"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			active := "no"
			if item.Active {
				active = "yes"
			}
			rows = append(rows, []string{item.PartNumber, item.Model, item.Version, item.PartSite, active, item.Description})
		}
		headers := []string{"part", "model", "version", "site", "active", "description"}
		if err := renderTable(cmd.OutOrStdout(), headers, rows, false); err != nil {
			return errs.Wrap(err, "write list table")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(partCmd)
	partCmd.AddCommand(partImportCmd, partListCmd)

	partImportCmd.Flags().StringP("file", "f", "", "YAML file with a parts list, - for stdin")
	_ = partImportCmd.MarkFlagRequired("file")
	partListCmd.Flags().Bool("active", false, "Only list active parts")
}
