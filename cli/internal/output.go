package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Output formats accepted by -o
const (
	outputTable = "table"
	outputJSON  = "json"
)

func addOutputFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "output", "o", outputTable, "Output format (table, json)")
}

func checkOutputFormat(format string) error {
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputTable, outputJSON)
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
}

func money(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// orDash keeps empty table cells visible
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
