package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/joescharf/itlog/internal/models"
)

// All returns every logged issue, oldest first.
func (t *Tracker) All(ctx context.Context) ([]*models.Issue, error) {
	issues, err := t.source.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read issues: %w", err)
	}
	return issues, nil
}

// FilterByType returns issues whose type matches raw, compared case-insensitively.
// raw must name an allowed type.
func (t *Tracker) FilterByType(ctx context.Context, raw string) ([]*models.Issue, error) {
	want, err := ParseFilterType(raw)
	if err != nil {
		return nil, err
	}

	issues, err := t.All(ctx)
	if err != nil {
		return nil, err
	}
	return MatchType(issues, want), nil
}

// ParseFilterType normalizes raw and rejects anything outside the allowed types.
func ParseFilterType(raw string) (models.IssueType, error) {
	want := models.NormalizeType(raw)
	if !want.Valid() {
		return "", &models.ValidationError{
			Field:   "type",
			Message: "Invalid type. Use: " + models.AllowedTypeNames(", "),
		}
	}
	return want, nil
}

// FilterByKeyword returns issues whose description contains keyword, ignoring case.
func (t *Tracker) FilterByKeyword(ctx context.Context, keyword string) ([]*models.Issue, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, &models.ValidationError{Field: "keyword", Message: "Keyword cannot be empty."}
	}

	issues, err := t.All(ctx)
	if err != nil {
		return nil, err
	}
	return MatchKeyword(issues, keyword), nil
}

// MatchType keeps issues of type want, preserving order.
func MatchType(issues []*models.Issue, want models.IssueType) []*models.Issue {
	var out []*models.Issue
	for _, issue := range issues {
		if models.NormalizeType(string(issue.Type)) == want {
			out = append(out, issue)
		}
	}
	return out
}

// MatchKeyword keeps issues whose description contains keyword, ignoring case.
func MatchKeyword(issues []*models.Issue, keyword string) []*models.Issue {
	needle := strings.ToLower(keyword)
	var out []*models.Issue
	for _, issue := range issues {
		if strings.Contains(strings.ToLower(issue.Description), needle) {
			out = append(out, issue)
		}
	}
	return out
}

// FormatLine renders issue as the n-th (1-based) entry of a listing.
func FormatLine(n int, issue *models.Issue) string {
	return fmt.Sprintf("%d. %s", n, issue)
}
