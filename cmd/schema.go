package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/model"
)

var schemaCmd = &cobra.Command{
	Use:       "schema <basic|extended>",
	Short:     "Print the JSON Schema of an analysis report",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.SchemaBasic), string(model.SchemaExtended)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSchema(os.Stdout, model.SchemaVariant(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func writeSchema(w io.Writer, variant model.SchemaVariant) error {
	s, err := analyzer.JSONSchema(variant)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(s), "encode schema")
}
