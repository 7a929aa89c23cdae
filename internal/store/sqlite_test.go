package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/itlog/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath, nil)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestSQLiteStore(t)

	err := s.Migrate(context.Background())
	assert.NoError(t, err)
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, &models.Issue{Datetime: "2024-01-01 00:00:01", Type: models.IssueTypeSoftware, Description: "app crash"}))
	require.NoError(t, s.Append(ctx, &models.Issue{Datetime: "2024-01-01 00:00:02", Type: models.IssueTypeNetwork, Description: "vpn down"}))
	require.NoError(t, s.Append(ctx, &models.Issue{Datetime: "2024-01-01 00:00:03", Type: models.IssueTypeSoftware, Description: "login loop"}))

	all, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "app crash", all[0].Description)
	assert.Equal(t, "login loop", all[2].Description)

	software, err := s.ListByType(ctx, models.IssueTypeSoftware)
	require.NoError(t, err)
	require.Len(t, software, 2)
	assert.Equal(t, "2024-01-01 00:00:01", software[0].Datetime)
	assert.Equal(t, "2024-01-01 00:00:03", software[1].Datetime)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLiteStore_RejectsUnknownType(t *testing.T) {
	s := newTestSQLiteStore(t)

	err := s.Append(context.Background(), &models.Issue{Datetime: "d", Type: models.IssueType("printer"), Description: "paper jam"})
	assert.Error(t, err)
}

func TestSQLiteStore_EmptyList(t *testing.T) {
	s := newTestSQLiteStore(t)

	issues, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
}
