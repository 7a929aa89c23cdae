package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/itlog/internal/models"
	"github.com/joescharf/itlog/internal/store"
)

var (
	exportFormat string
	exportSource string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export issues as JSON, CSV, or Markdown",
	Long:  "Export every logged issue to stdout. Reads the CSV store unless --source names the JSON store or the SQLite mirror.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(cmd.Context())
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportSource, "source", "csv", "Store to read: csv, json, sqlite")
	rootCmd.AddCommand(exportCmd)
}

func exportRun(ctx context.Context) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	src, err := a.reader(exportSource)
	if err != nil {
		return err
	}

	issues, err := src.ReadAll(ctx)
	if err != nil {
		return err
	}
	return exportIssues(issues)
}

func exportIssues(issues []*models.Issue) error {
	switch exportFormat {
	case "json":
		if issues == nil {
			issues = []*models.Issue{}
		}
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(issues)
	case "csv":
		w := csv.NewWriter(ui.Out)
		_ = w.Write(store.CSVHeader)
		for _, i := range issues {
			_ = w.Write([]string{i.Datetime, string(i.Type), i.Description})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Issues")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Datetime | Type | Description |")
		fmt.Fprintln(ui.Out, "|----------|------|-------------|")
		for _, i := range issues {
			fmt.Fprintf(ui.Out, "| %s | %s | %s |\n", i.Datetime, i.Type, markdownCell(i.Description))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

// markdownCell escapes pipes so a description cannot break the table.
func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
