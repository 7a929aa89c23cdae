package models

import (
	"strings"
	"unicode/utf8"
)

// MinDescriptionLen is the minimum trimmed description length, in characters.
const MinDescriptionLen = 5

// ValidationError describes why a candidate issue was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks a candidate issue. issueType is expected to be normalized already.
// Rules are checked in order: type, empty description, short description.
func Validate(issueType IssueType, description string) error {
	if !issueType.Valid() {
		return &ValidationError{
			Field:   "type",
			Message: "Invalid issue type. Use one of: " + AllowedTypeNames(", "),
		}
	}

	desc := strings.TrimSpace(description)
	if desc == "" {
		return &ValidationError{Field: "description", Message: "Description cannot be empty."}
	}
	if utf8.RuneCountInString(desc) < MinDescriptionLen {
		return &ValidationError{Field: "description", Message: "Description is too short (min 5 characters)."}
	}
	return nil
}
