package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *AttemptsRepo {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "nested", "attempts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAttemptsRepo(db)
}

func TestAttemptsRepo_Stats(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now.Add(-48 * time.Hour) }
	require.NoError(t, repo.RecordAttempt(ctx, core.Attempt{Provider: "Gemini 1.5 Flash", Outcome: "ok"}))

	repo.now = func() time.Time { return now }
	attempts := []core.Attempt{
		{Provider: "Gemini 1.5 Flash", Outcome: "rate_limited", Latency: 120 * time.Millisecond, Error: "429"},
		{Provider: "Gemini 1.5 Flash", Outcome: "rate_limited"},
		{Provider: "Llama 3.1 8B", Outcome: "transport", Error: "connection reset"},
		{Provider: "Llama 3.1 8B", Outcome: "ok", Latency: 800 * time.Millisecond},
	}
	for _, a := range attempts {
		require.NoError(t, repo.RecordAttempt(ctx, a))
	}

	stats, err := repo.AttemptStats(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, core.AttemptStat{Provider: "Gemini 1.5 Flash", Total: 2, RateLimited: 2}, stats[0])
	assert.Equal(t, core.AttemptStat{Provider: "Llama 3.1 8B", Total: 2, OK: 1, Failed: 1}, stats[1])

	removed, err := repo.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestAttemptsRepo_Empty(t *testing.T) {
	stats, err := newTestRepo(t).AttemptStats(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}
