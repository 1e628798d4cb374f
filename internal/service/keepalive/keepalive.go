package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/pkg/log"
)

const (
	pingTimeout    = 10 * time.Second
	cooldownSpec   = "@every 1m"
	pruneSpec      = "@daily"
	attemptsMaxAge = 7 * 24 * time.Hour
)

// Throttle is the part of the throttle state the scheduler touches.
type Throttle interface {
	ResetIfExpired(cooldown time.Duration) bool
	Names() []string
}

type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Config struct {
	PublicURL string
	PingSpec  string
	Cooldown  time.Duration
}

// Scheduler runs the self-ping, the throttle cooldown and ledger pruning.
type Scheduler struct {
	cfg      Config
	throttle Throttle
	pruner   Pruner
	client   *http.Client
	cron     *cron.Cron
}

func NewScheduler(cfg Config, throttle Throttle, pruner Pruner) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		throttle: throttle,
		pruner:   pruner,
		client:   &http.Client{Timeout: pingTimeout},
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	c := cron.New(cron.WithLogger(log.NewCronLoggerFromCtx(ctx)))

	if url := strings.TrimRight(s.cfg.PublicURL, "/"); url != "" {
		if _, err := c.AddFunc(s.cfg.PingSpec, func() { s.ping(ctx, url+"/health") }); err != nil {
			return fmt.Errorf("schedule keep-alive %q: %w", s.cfg.PingSpec, err)
		}
		logger.Info().Str("target", url).Str("spec", s.cfg.PingSpec).Msg("keep-alive enabled")
	}

	if s.cfg.Cooldown > 0 {
		if _, err := c.AddFunc(cooldownSpec, func() { s.resetExpired(ctx) }); err != nil {
			return fmt.Errorf("schedule throttle cooldown: %w", err)
		}
	}

	if s.pruner != nil {
		if _, err := c.AddFunc(pruneSpec, func() { s.prune(ctx) }); err != nil {
			return fmt.Errorf("schedule attempt pruning: %w", err)
		}
	}

	s.cron = c
	c.Start()

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(pingTimeout):
	}
	return nil
}

func (s *Scheduler) ping(ctx context.Context, url string) {
	logger := log.FromCtx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error().Err(err).Msg("keep-alive request")
		return
	}
	req.Header.Set("User-Agent", core.CampusUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("keep-alive ping failed")
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	logger.Debug().Int("status", resp.StatusCode).Strs("throttled", s.throttle.Names()).Msg("keep-alive ping")
}

func (s *Scheduler) resetExpired(ctx context.Context) {
	if s.throttle.ResetIfExpired(s.cfg.Cooldown) {
		log.FromCtx(ctx).Info().Msg("throttle cooldown expired, providers restored")
	}
}

func (s *Scheduler) prune(ctx context.Context) {
	n, err := s.pruner.Prune(ctx, time.Now().Add(-attemptsMaxAge))
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("prune provider attempts")
		return
	}
	log.FromCtx(ctx).Debug().Int64("removed", n).Msg("pruned provider attempts")
}
