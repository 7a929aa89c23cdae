package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joescharf/itlog/internal/models"
)

func newTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	return NewJSONStore(filepath.Join(t.TempDir(), "issues.json"), nil)
}

func readJSONArray(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestJSONStore_LoadMissingFile(t *testing.T) {
	s := newTestJSONStore(t)

	issues, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestJSONStore_AppendCreatesFile(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	issue := &models.Issue{Datetime: "2024-01-01 09:00:00", Type: models.IssueTypeSoftware, Description: "printer jam"}
	require.NoError(t, s.Append(ctx, issue))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	expected := `[
  {
    "datetime": "2024-01-01 09:00:00",
    "type": "software",
    "description": "printer jam"
  }
]`
	assert.Equal(t, expected, string(data))
}

func TestJSONStore_AppendAccumulates(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	for _, desc := range []string{"disk full", "DISK error", "network down"} {
		require.NoError(t, s.Append(ctx, &models.Issue{Datetime: "2024-01-01 00:00:00", Type: models.IssueTypeHardware, Description: desc}))
	}

	issues, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, "disk full", issues[0].Description)
	assert.Equal(t, "DISK error", issues[1].Description)
	assert.Equal(t, "network down", issues[2].Description)
}

func TestJSONStore_CorruptedFileRecovers(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	issues, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)

	require.NoError(t, s.Append(ctx, &models.Issue{Datetime: "2024-01-01 00:00:00", Type: models.IssueTypeNetwork, Description: "router reboot loop"}))

	arr := readJSONArray(t, s.Path())
	require.Len(t, arr, 1)
	assert.Equal(t, "router reboot loop", arr[0]["description"])
}

func TestJSONStore_NonArrayTreatedAsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"object": `{"datetime": "x"}`,
		"string": `"hello"`,
		"null":   `null`,
		"empty":  ``,
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestJSONStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0644))

			issues, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, issues)

			require.NoError(t, s.Append(context.Background(), &models.Issue{Datetime: "d", Type: models.IssueTypeSoftware, Description: "after reset"}))
			assert.Len(t, readJSONArray(t, s.Path()), 1)
		})
	}
}

func TestJSONStore_PreservesForeignFields(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()
	existing := `[{"datetime": "2023-12-31 23:59:59", "type": "hardware", "description": "old entry", "ticket": 42}]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(existing), 0644))

	require.NoError(t, s.Append(ctx, &models.Issue{Datetime: "2024-01-01 00:00:00", Type: models.IssueTypeSoftware, Description: "new entry"}))

	arr := readJSONArray(t, s.Path())
	require.Len(t, arr, 2)
	assert.Equal(t, float64(42), arr[0]["ticket"])
	assert.Equal(t, "new entry", arr[1]["description"])
}

func TestJSONStore_NonASCIIAndHTMLLiteral(t *testing.T) {
	s := newTestJSONStore(t)

	require.NoError(t, s.Append(context.Background(), &models.Issue{Datetime: "d", Type: models.IssueTypeSoftware, Description: "café <b> & ü"}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"description": "café <b> & ü"`)
}

func TestJSONStore_LineSeparatorsLiteral(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()
	desc := "line\u2028para\u2029end \\u2028 stays escaped text"

	require.NoError(t, s.Append(ctx, &models.Issue{Datetime: "d", Type: models.IssueTypeSoftware, Description: desc}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "line\u2028para\u2029end")
	assert.Contains(t, string(data), `\\u2028 stays escaped text`)

	issues, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, desc, issues[0].Description)
}

func TestLiteralLineSeparators(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"a\u2028b"`, "\"a\u2028b\""},
		{`"a\u2029b"`, "\"a\u2029b\""},
		{`"a\\u2028b"`, `"a\\u2028b"`},
		{`"a\\\u2028b"`, "\"a\\\\\u2028b\""},
		{`"a\u00e9b"`, `"a\u00e9b"`},
		{`"tail\u202`, `"tail\u202`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, string(literalLineSeparators([]byte(tt.in))))
		})
	}
}

func TestJSONStore_LogsNonIssueElements(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewJSONStore(filepath.Join(t.TempDir(), "issues.json"), zap.New(core))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"datetime": "d", "type": "network", "description": "vpn down"}, 7]`), 0644))

	issues, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "vpn down", issues[0].Description)
	assert.Equal(t, &models.Issue{}, issues[1])

	entries := logs.FilterMessage("json element is not an issue").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["index"])
}

func TestJSONStore_Name(t *testing.T) {
	assert.Equal(t, "json", newTestJSONStore(t).Name())
}
