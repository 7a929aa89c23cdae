package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/itlog/internal/models"
)

func descriptions(issues []*models.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Description
	}
	return out
}

func seed(t *testing.T, env *testEnv, entries ...[2]string) {
	t.Helper()
	for _, e := range entries {
		_, err := env.tracker.Log(context.Background(), e[0], e[1])
		require.NoError(t, err)
	}
}

func TestAll_EmptyWhenNothingLogged(t *testing.T) {
	env := newTestEnv(t)

	issues, err := env.tracker.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestAll_InsertionOrder(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env,
		[2]string{"software", "first entry"},
		[2]string{"hardware", "second entry"},
		[2]string{"network", "third entry"},
	)

	issues, err := env.tracker.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first entry", "second entry", "third entry"}, descriptions(issues))
}

func TestFilterByType(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env,
		[2]string{"software", "excel freezes"},
		[2]string{"network", "slow wifi"},
		[2]string{"Software", "outlook sync"},
		[2]string{"hardware", "dead mouse"},
	)

	issues, err := env.tracker.FilterByType(context.Background(), "SOFTWARE")
	require.NoError(t, err)
	assert.Equal(t, []string{"excel freezes", "outlook sync"}, descriptions(issues))

	issues, err = env.tracker.FilterByType(context.Background(), "  hardware ")
	require.NoError(t, err)
	assert.Equal(t, []string{"dead mouse"}, descriptions(issues))
}

func TestFilterByType_Invalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tracker.FilterByType(context.Background(), "printer")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Invalid type. Use: software, hardware, network", verr.Error())
}

func TestParseFilterType(t *testing.T) {
	got, err := ParseFilterType("  HARDWARE ")
	require.NoError(t, err)
	assert.Equal(t, models.IssueTypeHardware, got)

	_, err = ParseFilterType("")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "type", verr.Field)
}

func TestFilterByKeyword(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env,
		[2]string{"hardware", "disk full"},
		[2]string{"hardware", "DISK error"},
		[2]string{"network", "network down"},
	)

	issues, err := env.tracker.FilterByKeyword(context.Background(), "disk")
	require.NoError(t, err)
	assert.Equal(t, []string{"disk full", "DISK error"}, descriptions(issues))

	issues, err = env.tracker.FilterByKeyword(context.Background(), "nothing matches")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestFilterByKeyword_Empty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tracker.FilterByKeyword(context.Background(), "   ")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Keyword cannot be empty.", verr.Error())
}

func TestMatchType_NormalizesStoredType(t *testing.T) {
	issues := []*models.Issue{
		{Type: "Network ", Description: "hand-edited row"},
		{Type: "software", Description: "app"},
	}
	assert.Equal(t, []string{"hand-edited row"}, descriptions(MatchType(issues, models.IssueTypeNetwork)))
}

func TestFormatLine(t *testing.T) {
	issue := &models.Issue{Datetime: "2024-06-01 14:30:00", Type: models.IssueTypeSoftware, Description: "printer jam"}
	assert.Equal(t, "3. [2024-06-01 14:30:00] (software) printer jam", FormatLine(3, issue))
}
