package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/joescharf/itlog/internal/models"
)

// CSVHeader is the fixed column layout of the CSV store.
var CSVHeader = []string{"datetime", "type", "description"}

// Record is one CSV row keyed by column name.
type Record map[string]string

// Issue maps the record onto an Issue. Missing columns become empty strings.
func (r Record) Issue() *models.Issue {
	return &models.Issue{
		Datetime:    r["datetime"],
		Type:        models.IssueType(r["type"]),
		Description: r["description"],
	}
}

// CSVStore appends issues as rows to a CSV file with a fixed header.
// Every read goes back to disk; nothing is cached.
type CSVStore struct {
	path string
	log  *zap.Logger
}

// NewCSVStore returns a store backed by the file at path. The file is created lazily.
func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{path: path, log: logger}
}

// Name implements Sink.
func (s *CSVStore) Name() string { return "csv" }

// Path returns the backing file path.
func (s *CSVStore) Path() string { return s.path }

// EnsureHeader creates the file with the header row if it does not exist.
// An existing file is left untouched.
func (s *CSVStore) EnsureHeader() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create csv directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		// Lost a race with another creator; the header is somebody else's job.
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("create %s: %w", s.path, err)
	}

	s.log.Debug("created csv store", zap.String("path", s.path))
	return writeRows(f, [][]string{CSVHeader})
}

// Append ensures the header and writes one row.
func (s *CSVStore) Append(_ context.Context, issue *models.Issue) error {
	if err := s.EnsureHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	return writeRows(f, [][]string{{issue.Datetime, string(issue.Type), issue.Description}})
}

// writeRows writes rows to f and closes it.
func writeRows(f *os.File, rows [][]string) error {
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

// ReadRecords returns every data row keyed by header column, in file order.
// A missing file yields no records.
func (s *CSVStore) ReadRecords(_ context.Context) ([]Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		// Blank lines are skipped by the reader; an all-empty row still counts.
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadAll implements Reader.
func (s *CSVStore) ReadAll(ctx context.Context) ([]*models.Issue, error) {
	records, err := s.ReadRecords(ctx)
	if err != nil {
		return nil, err
	}
	issues := make([]*models.Issue, len(records))
	for i, rec := range records {
		issues[i] = rec.Issue()
	}
	return issues, nil
}
