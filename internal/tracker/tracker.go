// Package tracker records issues to every configured store and answers list
// and filter queries from the CSV history.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joescharf/itlog/internal/models"
	"github.com/joescharf/itlog/internal/store"
)

// Tracker orchestrates validation, persistence, and queries.
type Tracker struct {
	source store.Reader
	sinks  []store.Sink
	log    *zap.Logger

	// Now stamps new issues. Replaceable in tests.
	Now func() time.Time
}

// New returns a Tracker that reads from source and writes new issues to sinks
// in the order given. A typical setup passes the CSV store as source and
// [csv, json] as sinks.
func New(source store.Reader, sinks []store.Sink, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		source: source,
		sinks:  sinks,
		log:    logger,
		Now:    time.Now,
	}
}

// SinkNames lists the configured sinks in write order.
func (t *Tracker) SinkNames() []string {
	names := make([]string, len(t.sinks))
	for i, s := range t.sinks {
		names[i] = s.Name()
	}
	return names
}

// Log validates a candidate issue and appends it to every sink.
//
// Validation failures return a *models.ValidationError and write nothing.
// A sink failure stops the remaining writes; sinks already written are not
// rolled back, so stores can drift apart (see the check command).
func (t *Tracker) Log(ctx context.Context, rawType, description string) (*models.Issue, error) {
	issueType := models.NormalizeType(rawType)
	// CSV readers fold CRLF inside a quoted field to LF; store LF everywhere.
	desc := strings.ReplaceAll(strings.TrimSpace(description), "\r\n", "\n")

	if err := models.Validate(issueType, desc); err != nil {
		t.log.Debug("rejected issue", zap.String("type", string(issueType)), zap.Error(err))
		return nil, err
	}

	issue := models.NewIssue(issueType, desc, t.Now())
	for _, sink := range t.sinks {
		if err := sink.Append(ctx, issue); err != nil {
			t.log.Warn("sink write failed", zap.String("sink", sink.Name()), zap.Error(err))
			return nil, fmt.Errorf("save to %s: %w", sink.Name(), err)
		}
		t.log.Debug("issue saved", zap.String("sink", sink.Name()), zap.String("datetime", issue.Datetime))
	}
	return issue, nil
}
