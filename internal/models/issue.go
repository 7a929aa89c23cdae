package models

import (
	"fmt"
	"strings"
	"time"
)

// IssueType represents the kind of IT problem an issue reports.
type IssueType string

const (
	IssueTypeSoftware IssueType = "software"
	IssueTypeHardware IssueType = "hardware"
	IssueTypeNetwork  IssueType = "network"
)

// AllowedTypes is the closed set of issue types, in display order.
var AllowedTypes = []IssueType{
	IssueTypeSoftware,
	IssueTypeHardware,
	IssueTypeNetwork,
}

// DatetimeLayout is the on-disk timestamp format (YYYY-MM-DD HH:MM:SS, local time).
const DatetimeLayout = "2006-01-02 15:04:05"

// Issue is one logged IT issue report.
type Issue struct {
	Datetime    string    `json:"datetime"`
	Type        IssueType `json:"type"`
	Description string    `json:"description"`
}

// NewIssue builds an issue stamped with the given time.
func NewIssue(t IssueType, description string, now time.Time) *Issue {
	return &Issue{
		Datetime:    now.Format(DatetimeLayout),
		Type:        t,
		Description: description,
	}
}

// String renders the issue as "[datetime] (type) description".
func (i Issue) String() string {
	return fmt.Sprintf("[%s] (%s) %s", i.Datetime, i.Type, i.Description)
}

// NormalizeType trims and lowercases raw type input.
func NormalizeType(raw string) IssueType {
	return IssueType(strings.ToLower(strings.TrimSpace(raw)))
}

// Valid reports whether t is one of AllowedTypes.
func (t IssueType) Valid() bool {
	for _, a := range AllowedTypes {
		if t == a {
			return true
		}
	}
	return false
}

// AllowedTypeNames returns the allowed types joined with sep.
func AllowedTypeNames(sep string) string {
	names := make([]string, len(AllowedTypes))
	for i, t := range AllowedTypes {
		names[i] = string(t)
	}
	return strings.Join(names, sep)
}
