package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/service/chat"
	"github.com/sandevgo/campusbot/pkg/log"
)

const (
	readHeaderTimeout = 10 * time.Second
	// A chat request may walk the whole provider chain.
	writeTimeout = 3 * time.Minute
	statsWindow  = 24 * time.Hour
)

// Assistant is the orchestrator surface the HTTP layer needs.
type Assistant interface {
	Chat(ctx context.Context, user, message string) (chat.Reply, error)
	History(user string) []core.Turn
	Clear(user string)
	Health(ctx context.Context, cooldown time.Duration) chat.Health
	ResetThrottle()
}

type AttemptStats interface {
	AttemptStats(ctx context.Context, since time.Time) ([]core.AttemptStat, error)
}

type Config struct {
	Addr             string
	CORSOrigins      []string
	ThrottleCooldown time.Duration
}

type Server struct {
	cfg       Config
	assistant Assistant
	stats     AttemptStats
	srv       *http.Server
}

// NewServer builds the router. stats may be nil when the attempt ledger is off.
func NewServer(ctx context.Context, cfg Config, assistant Assistant, stats AttemptStats) *Server {
	s := &Server{
		cfg:       cfg,
		assistant: assistant,
		stats:     stats,
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(log.Component(ctx, "http")),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr).Msg("starting http server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) routes(logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(corsMiddleware(s.cfg.CORSOrigins))

	r.Post("/chat", s.handleChat)
	r.Get("/chat/history/{user_id}", s.handleHistory)
	r.Post("/chat/clear/{user_id}", s.handleClear)

	r.Get("/health", s.handleHealth)
	r.Post("/health/reset", s.handleResetThrottle)

	return r
}
