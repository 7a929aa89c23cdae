package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/joescharf/itlog/internal/models"
)

// JSONStore keeps all issues in a single pretty-printed JSON array file.
// Each append is a read-modify-write of the whole file.
type JSONStore struct {
	path string
	log  *zap.Logger
}

// NewJSONStore returns a store backed by the file at path.
func NewJSONStore(path string, logger *zap.Logger) *JSONStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONStore{path: path, log: logger}
}

// Name implements Sink.
func (s *JSONStore) Name() string { return "json" }

// Path returns the backing file path.
func (s *JSONStore) Path() string { return s.path }

// Load returns the stored array. A missing file, malformed JSON, or a top-level
// value that is not an array all yield an empty list.
func (s *JSONStore) Load(_ context.Context) ([]*models.Issue, error) {
	raw, err := s.loadRaw()
	if err != nil {
		return nil, err
	}

	issues := make([]*models.Issue, 0, len(raw))
	for i, elem := range raw {
		var issue models.Issue
		// Elements that are not issue objects still count toward the array length.
		if err := json.Unmarshal(elem, &issue); err != nil {
			s.log.Debug("json element is not an issue", zap.String("path", s.path), zap.Int("index", i), zap.Error(err))
		}
		issues = append(issues, &issue)
	}
	return issues, nil
}

// loadRaw returns the array elements untouched so rewrites keep foreign fields.
func (s *JSONStore) loadRaw() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		s.log.Warn("json store is not an array, starting empty", zap.String("path", s.path), zap.Error(err))
		return []json.RawMessage{}, nil
	}
	return raw, nil
}

// ReadAll implements Reader.
func (s *JSONStore) ReadAll(ctx context.Context) ([]*models.Issue, error) {
	return s.Load(ctx)
}

// Append loads the array, adds issue, and rewrites the file.
func (s *JSONStore) Append(_ context.Context, issue *models.Issue) error {
	raw, err := s.loadRaw()
	if err != nil {
		return err
	}
	elem, err := marshalIssue(issue)
	if err != nil {
		return err
	}
	return s.write(append(raw, elem))
}

// marshalIssue encodes without HTML escaping so "<" and "&" stay literal.
func marshalIssue(issue *models.Issue) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(issue); err != nil {
		return nil, fmt.Errorf("encode issue: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (s *JSONStore) write(issues []json.RawMessage) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(issues); err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	// Encode adds a trailing newline; the file ends at the closing bracket.
	data := literalLineSeparators(bytes.TrimRight(buf.Bytes(), "\n"))

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create json directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.log.Debug("rewrote json store", zap.String("path", s.path), zap.Int("issues", len(issues)))
	return nil
}

// literalLineSeparators turns the \u2028 and \u2029 escapes that encoding/json
// always emits back into literal characters. Escaped backslashes are copied as
// pairs, so text such as `\\u2028` stays as written.
func literalLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '\\' || i+1 >= len(data) {
			out = append(out, c)
			continue
		}
		if data[i+1] == 'u' && i+5 < len(data) {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = utf8.AppendRune(out, '\u2028')
				i += 5
				continue
			case "2029":
				out = utf8.AppendRune(out, '\u2029')
				i += 5
				continue
			}
		}
		out = append(out, c, data[i+1])
		i++
	}
	return out
}
