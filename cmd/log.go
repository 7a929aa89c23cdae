package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/itlog/internal/models"
	"github.com/joescharf/itlog/internal/output"
)

var (
	logType     string
	logDesc     string
	logAutoType bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a new issue without the interactive menu",
	Long: `Log a new issue to the CSV and JSON stores.

With --auto-type the type is suggested from the description when --type is empty.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logRun(cmd.Context())
	},
}

func init() {
	logCmd.Flags().StringVar(&logType, "type", "", "Issue type: "+models.AllowedTypeNames(", "))
	logCmd.Flags().StringVar(&logDesc, "desc", "", "Short description (min 5 characters, required)")
	logCmd.Flags().BoolVar(&logAutoType, "auto-type", false, "Suggest the type from the description when --type is empty")
	_ = logCmd.MarkFlagRequired("desc")
	rootCmd.AddCommand(logCmd)
}

func logRun(ctx context.Context) error {
	rawType := logType
	if strings.TrimSpace(rawType) == "" && logAutoType {
		t, reason := suggestType(ctx, logDesc)
		rawType = string(t)
		ui.Info("Suggested type: %s", output.TypeColor(rawType))
		ui.VerboseLog("%s", reason)
	}

	if dryRun {
		issueType := models.NormalizeType(rawType)
		if err := models.Validate(issueType, logDesc); err != nil {
			return err
		}
		ui.DryRunMsg("Would log issue: (%s) %s", issueType, strings.TrimSpace(logDesc))
		return nil
	}

	a, err := getApp()
	if err != nil {
		return err
	}

	issue, err := a.tracker.Log(ctx, rawType, logDesc)
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	if err != nil {
		return fmt.Errorf("log issue: %w", err)
	}

	ui.Success("Logged %s issue at %s: %s", output.TypeColor(string(issue.Type)), output.Cyan(issue.Datetime), issue.Description)
	return nil
}
