// Package menu runs the interactive issue logger loop.
package menu

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/joescharf/itlog/internal/models"
	"github.com/joescharf/itlog/internal/output"
	"github.com/joescharf/itlog/internal/tracker"
)

// Menu is the 4-option interactive loop. It keeps no state between iterations.
type Menu struct {
	tracker *tracker.Tracker
	ui      *output.UI
	prompt  Prompter
}

// New creates a Menu.
func New(t *tracker.Tracker, ui *output.UI, p Prompter) *Menu {
	return &Menu{tracker: t, ui: ui, prompt: p}
}

// Run shows the menu until the user exits or input ends. Bad input never ends
// the loop; only a failing prompter or a cancelled context does.
func (m *Menu) Run(ctx context.Context) error {
	m.ui.Println("IT Issue Logger")
	m.ui.Println("===============")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.ui.Println("1. Log new issue")
		m.ui.Println("2. View all issues")
		m.ui.Println("3. Search / filter issues")
		m.ui.Println("4. Exit")

		choice, err := m.prompt.Prompt("Choose an option: ")
		if err != nil {
			return m.finish(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.logIssue(ctx)
		case "2":
			err = m.viewIssues(ctx)
		case "3":
			err = m.filterIssues(ctx)
		case "4":
			return m.finish(io.EOF)
		default:
			m.blank()
			m.ui.Error("Invalid choice.")
			m.blank()
		}

		if errors.Is(err, io.EOF) {
			return m.finish(err)
		}
		if err != nil {
			m.blank()
			m.ui.Error("%v", err)
			m.blank()
		}
	}
}

// finish says goodbye on a clean exit or end of input and passes other errors up.
func (m *Menu) finish(err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}
	m.blank()
	m.ui.Println("Goodbye!")
	m.blank()
	return nil
}

func (m *Menu) blank() { m.ui.Println() }

func (m *Menu) logIssue(ctx context.Context) error {
	m.blank()
	m.ui.Println("Log new issue")
	m.ui.Println("-------------")

	rawType, err := m.prompt.Prompt("Issue type (" + models.AllowedTypeNames("/") + "): ")
	if err != nil {
		return err
	}
	desc, err := m.prompt.Prompt("Short description: ")
	if err != nil {
		return err
	}

	_, err = m.tracker.Log(ctx, rawType, desc)
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		m.blank()
		m.ui.Error("%s", verr.Message)
		m.blank()
		return nil
	}
	if err != nil {
		return err
	}

	m.blank()
	m.ui.Success("Issue logged successfully (saved to %s).", strings.ToUpper(strings.Join(m.tracker.SinkNames(), " + ")))
	m.blank()
	return nil
}

func (m *Menu) viewIssues(ctx context.Context) error {
	issues, err := m.tracker.All(ctx)
	if err != nil {
		return err
	}
	m.printIssues(issues)
	return nil
}

func (m *Menu) filterIssues(ctx context.Context) error {
	issues, err := m.tracker.All(ctx)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		m.blank()
		m.ui.Info("No issues logged yet.")
		m.blank()
		return nil
	}

	m.blank()
	m.ui.Println("Filter issues")
	m.ui.Println("-------------")
	m.ui.Println("1. Filter by type")
	m.ui.Println("2. Filter by keyword (in description)")

	choice, err := m.prompt.Prompt("Choose an option: ")
	if err != nil {
		return err
	}

	var filtered []*models.Issue
	switch strings.TrimSpace(choice) {
	case "1":
		t, err := m.prompt.Prompt("Type (" + models.AllowedTypeNames("/") + "): ")
		if err != nil {
			return err
		}
		filtered, err = m.tracker.FilterByType(ctx, t)
		if m.reportInvalid(err) {
			return nil
		}
		if err != nil {
			return err
		}
	case "2":
		k, err := m.prompt.Prompt("Keyword: ")
		if err != nil {
			return err
		}
		filtered, err = m.tracker.FilterByKeyword(ctx, k)
		if m.reportInvalid(err) {
			return nil
		}
		if err != nil {
			return err
		}
	default:
		m.blank()
		m.ui.Error("Invalid option.")
		m.blank()
		return nil
	}

	m.printIssues(filtered)
	return nil
}

// reportInvalid prints validation errors and reports whether err was one.
func (m *Menu) reportInvalid(err error) bool {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	m.blank()
	m.ui.Error("%s", verr.Message)
	m.blank()
	return true
}

func (m *Menu) printIssues(issues []*models.Issue) {
	if len(issues) == 0 {
		m.blank()
		m.ui.Info("No issues found.")
		m.blank()
		return
	}

	m.blank()
	m.ui.Println("Logged issues")
	m.ui.Println("------------")
	for i, issue := range issues {
		m.ui.Println(tracker.FormatLine(i+1, issue))
	}
	m.blank()
}
