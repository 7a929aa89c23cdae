package store

import (
	"context"

	"github.com/joescharf/itlog/internal/models"
)

// Sink is a persistence backend that new issues are appended to.
type Sink interface {
	// Name identifies the sink in errors and logs (e.g. "csv", "json").
	Name() string
	Append(ctx context.Context, issue *models.Issue) error
}

// Reader returns the full issue history, oldest first.
type Reader interface {
	ReadAll(ctx context.Context) ([]*models.Issue, error)
}

// Store is a sink that can also read its history back.
type Store interface {
	Sink
	Reader
}
