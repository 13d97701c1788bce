/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"qctrack/internal/errs"
	"qctrack/internal/usecase/part"
)

type schemaSource struct {
	value    any
	fieldTag string
}

// schemaSources are the documents a client can send: API request bodies and the parts
// import file.
var schemaSources = map[string]schemaSource{
	"inspection-create": {value: &createInspectionRequest{}},
	"inspection-update": {value: &updateInspectionRequest{}},
	"inspection-judge":  {value: &judgeInspectionRequest{}},
	"inspection-derive": {value: &deriveInspectionRequest{}},
	"defect-record":     {value: &recordDefectRequest{}},
	"defect-update":     {value: &updateDefectRequest{}},
	"part-create":       {value: &createPartRequest{}},
	"part-update":       {value: &updatePartRequest{}},
	"part-import":       {value: &part.ImportFile{}, fieldTag: "yaml"},
}

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema [name]",
	Short: "Print JSON Schema for API request bodies and import files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, name := range schemaNames() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return errs.Wrap(err, "write schema names")
				}
			}
			return nil
		}

		schema, err := buildSchema(args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return errs.Wrap(err, "marshal schema")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
			return errs.Wrap(err, "write schema")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func buildSchema(name string) (*jsonschema.Schema, error) {
	source, ok := schemaSources[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q, want one of: %s", name, strings.Join(schemaNames(), ", "))
	}
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		FieldNameTag:   source.fieldTag,
	}
	schema := reflector.Reflect(source.value)
	schema.Title = name
	return schema, nil
}

func schemaNames() []string {
	names := make([]string, 0, len(schemaSources))
	for name := range schemaSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
