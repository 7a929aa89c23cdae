package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/itlog/internal/llm"
	"github.com/joescharf/itlog/internal/models"
	"github.com/joescharf/itlog/internal/output"
)

// typeSuggester picks an issue type for a description.
type typeSuggester interface {
	SuggestType(ctx context.Context, description string) (*llm.Suggestion, error)
}

// newSuggester returns the LLM suggester, or nil when no API key is configured.
// Replaceable in tests.
var newSuggester = func() typeSuggester {
	if c := newLLMClient(); c != nil {
		return c
	}
	return nil
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <description...>",
	Short: "Suggest an issue type for a description",
	Long: `Suggest which issue type (software, hardware, network) fits a description.

Uses the Anthropic API when anthropic.api_key (or ANTHROPIC_API_KEY) is set,
otherwise keyword heuristics.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return suggestRun(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func suggestRun(ctx context.Context, description string) error {
	t, reason := suggestType(ctx, description)
	fmt.Fprintln(ui.Out, output.TypeColor(string(t)))
	ui.VerboseLog("%s", reason)
	return nil
}

// suggestType asks the LLM when available and falls back to heuristics.
// The second return value says how the type was chosen.
func suggestType(ctx context.Context, description string) (models.IssueType, string) {
	if s := newSuggester(); s != nil {
		sug, err := s.SuggestType(ctx, description)
		if err == nil {
			return sug.Type, "llm: " + sug.Reason
		}
		ui.Warning("LLM suggestion failed, using keywords: %v", err)
	}
	return classifyIssueType(description), "keyword heuristics"
}
