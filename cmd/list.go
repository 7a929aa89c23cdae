package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/itlog/internal/models"
	"github.com/joescharf/itlog/internal/output"
	"github.com/joescharf/itlog/internal/store"
	"github.com/joescharf/itlog/internal/tracker"
)

var (
	listType    string
	listKeyword string
	listFormat  string
	listSource  string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List logged issues",
	Long:    "List logged issues, oldest first, from the CSV store unless --source says otherwise. --type and --keyword may be combined.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun(cmd.Context())
	},
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "Filter by type: "+models.AllowedTypeNames(", "))
	listCmd.Flags().StringVar(&listKeyword, "keyword", "", "Filter by keyword in description (case-insensitive)")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text, table, json")
	listCmd.Flags().StringVar(&listSource, "source", "csv", "Store to read: csv, json, sqlite")
	rootCmd.AddCommand(listCmd)
}

func listRun(ctx context.Context) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	issues, err := listIssues(ctx, a)
	if err != nil {
		return err
	}

	if listKeyword != "" {
		if strings.TrimSpace(listKeyword) == "" {
			return &models.ValidationError{Field: "keyword", Message: "Keyword cannot be empty."}
		}
		issues = tracker.MatchKeyword(issues, strings.TrimSpace(listKeyword))
	}

	switch listFormat {
	case "json":
		if issues == nil {
			issues = []*models.Issue{}
		}
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(issues)
	case "table":
		if len(issues) == 0 {
			ui.Info("No issues found.")
			return nil
		}
		table := ui.Table([]string{"#", "Datetime", "Type", "Description"})
		for i, issue := range issues {
			_ = table.Append([]string{
				strconv.Itoa(i + 1),
				issue.Datetime,
				output.TypeColor(string(issue.Type)),
				issue.Description,
			})
		}
		return table.Render()
	case "text":
		if len(issues) == 0 {
			ui.Info("No issues found.")
			return nil
		}
		for i, issue := range issues {
			fmt.Fprintln(ui.Out, tracker.FormatLine(i+1, issue))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (use: text, table, json)", listFormat)
	}
}

// listIssues reads the selected store, applying --type. The SQLite mirror
// filters in SQL; the file stores filter in memory.
func listIssues(ctx context.Context, a *appDeps) ([]*models.Issue, error) {
	src, err := a.reader(listSource)
	if err != nil {
		return nil, err
	}
	if listType == "" {
		return src.ReadAll(ctx)
	}

	want, err := tracker.ParseFilterType(listType)
	if err != nil {
		return nil, err
	}
	if db, ok := src.(*store.SQLiteStore); ok {
		return db.ListByType(ctx, want)
	}
	issues, err := src.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return tracker.MatchType(issues, want), nil
}
