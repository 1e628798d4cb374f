package core

import (
	"context"
	"time"
)

type AttemptRepository interface {
	RecordAttempt(ctx context.Context, a Attempt) error
	AttemptStats(ctx context.Context, since time.Time) ([]AttemptStat, error)
}

type AttemptStat struct {
	Provider    string `json:"provider"`
	Total       int    `json:"total"`
	OK          int    `json:"ok"`
	RateLimited int    `json:"rate_limited"`
	Failed      int    `json:"failed"`
}
