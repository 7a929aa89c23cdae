package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/itlog/internal/health"
	"github.com/joescharf/itlog/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the CSV and JSON stores agree",
	Long: `Compare the CSV and JSON stores entry by entry.

Every log writes CSV first, then JSON, with no rollback. A crash or write
failure between the two leaves the stores out of step; check reports that.
The command fails when the stores disagree.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkRun(ctx context.Context) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	csvIssues, err := a.csv.ReadAll(ctx)
	if err != nil {
		return err
	}
	jsonIssues, err := a.json.ReadAll(ctx)
	if err != nil {
		return err
	}

	h := health.NewScorer().Score(csvIssues, jsonIssues)

	fmt.Fprintf(ui.Out, "  %-10s %d  (%s)\n", "CSV", h.CSVCount, a.csv.Path())
	fmt.Fprintf(ui.Out, "  %-10s %d  (%s)\n", "JSON", h.JSONCount, a.json.Path())
	if a.sqlite != nil {
		n, err := a.sqlite.Count(ctx)
		if err != nil {
			ui.Warning("SQLite mirror unreadable: %v", err)
		} else {
			fmt.Fprintf(ui.Out, "  %-10s %d\n", "SQLite", n)
		}
	}
	fmt.Fprintf(ui.Out, "  %-10s %s\n", "Score", output.HealthColor(h.Total))
	ui.VerboseLog("count %d/40, content %d/30, validity %d/30", h.CountAgreement, h.ContentAgreement, h.RecordValidity)

	if len(h.Invalid) > 0 {
		ui.Warning("CSV rows failing validation: %s", joinInts(h.Invalid))
	}
	if !h.InSync() {
		ui.Error("Stores out of sync at entries: %s", joinInts(h.Mismatches))
		return fmt.Errorf("csv and json stores differ")
	}
	ui.Success("CSV and JSON stores are in sync")
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
