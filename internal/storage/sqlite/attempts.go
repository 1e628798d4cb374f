package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/pkg/log"
)

// AttemptsRepo is an append-only ledger of provider call outcomes.
type AttemptsRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewAttemptsRepo(db *sql.DB) *AttemptsRepo {
	return &AttemptsRepo{db: db, now: time.Now}
}

func (r *AttemptsRepo) RecordAttempt(ctx context.Context, a core.Attempt) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate attempt id: %w", err)
	}

	query := `INSERT INTO provider_attempts (id, created_at, provider, outcome, latency_ms, error) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		id.String(),
		r.now().UnixMilli(),
		a.Provider,
		a.Outcome,
		a.Latency.Milliseconds(),
		a.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

// AttemptStats aggregates outcomes per provider since the given time.
func (r *AttemptsRepo) AttemptStats(ctx context.Context, since time.Time) ([]core.AttemptStat, error) {
	query := `
		SELECT provider,
		       COUNT(*),
		       SUM(CASE WHEN outcome = 'ok' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'rate_limited' THEN 1 ELSE 0 END)
		FROM provider_attempts
		WHERE created_at >= ?
		GROUP BY provider
		ORDER BY provider`

	rows, err := r.db.QueryContext(ctx, query, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query attempt stats: %w", err)
	}
	defer rows.Close()

	stats := []core.AttemptStat{}
	for rows.Next() {
		var s core.AttemptStat
		if err := rows.Scan(&s.Provider, &s.Total, &s.OK, &s.RateLimited); err != nil {
			return nil, fmt.Errorf("failed to scan attempt stats: %w", err)
		}
		s.Failed = s.Total - s.OK - s.RateLimited
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("providers", len(stats)).Msg("loaded attempt stats")
	return stats, nil
}

// Prune deletes attempts older than before and returns how many were removed.
func (r *AttemptsRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM provider_attempts WHERE created_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}
	return res.RowsAffected()
}
