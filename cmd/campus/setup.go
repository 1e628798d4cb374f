package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/campusbot/internal/config"
	"github.com/sandevgo/campusbot/internal/providers/datasvc"
	"github.com/sandevgo/campusbot/internal/providers/llm"
	"github.com/sandevgo/campusbot/internal/service/chain"
	"github.com/sandevgo/campusbot/internal/service/chat"
	"github.com/sandevgo/campusbot/internal/service/conversation"
	"github.com/sandevgo/campusbot/internal/service/fallback"
	"github.com/sandevgo/campusbot/internal/service/keepalive"
	"github.com/sandevgo/campusbot/internal/service/retriever"
	"github.com/sandevgo/campusbot/internal/storage/sqlite"
	"github.com/sandevgo/campusbot/internal/transport/api"
	"github.com/sandevgo/campusbot/internal/transport/telegram"
	"github.com/sandevgo/campusbot/pkg/log"
	"github.com/sandevgo/campusbot/pkg/srv"
)

// app holds the components every command shares.
type app struct {
	cfg          *config.AppConfig
	entries      []llm.Entry
	chain        *chain.Chain
	orchestrator *chat.Orchestrator
	// nil when CAMPUS_ATTEMPTS_DB=off
	ledger   *sqlite.AttemptsRepo
	cleanups []srv.Service
}

func newApp(ctx context.Context) *app {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providersCfg := config.NewProvidersConfig(ctx)

	a := &app{cfg: appCfg}

	// 2. Provider chain
	chainCfg, err := config.LoadChain(appCfg.GetChainConfigPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load provider chain")
	}
	a.entries, err = llm.NewEntries(ctx, chainCfg, providersCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM providers")
	}

	opts := []chain.Option{chain.WithMaxTokens(providersCfg.MaxTokens)}

	// 3. Attempt ledger
	if path := appCfg.GetAttemptsDBPath(); path != "" {
		db, err := sqlite.NewDB(ctx, path)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize attempt ledger")
		}
		a.cleanups = append(a.cleanups, srv.NewCleanup("attempt ledger", db.Close))
		a.ledger = sqlite.NewAttemptsRepo(db)
		opts = append(opts, chain.WithRecorder(a.ledger))
	}

	a.chain = chain.New(a.entries, chain.NewThrottleState(), opts...)

	// 4. Orchestrator
	loc := appCfg.GetLocation()
	a.orchestrator = chat.NewOrchestrator(
		datasvc.NewClient(appCfg.DataAPIURL),
		retriever.New(appCfg.GetContextItems(), loc),
		a.chain,
		fallback.NewRenderer(loc, nil),
		conversation.NewStore(conversation.DefaultCapacity),
		chat.NewPromptBuilder(chat.DefaultTokenizer(), appCfg.GetPromptTokenBudget(), appCfg.GetHistoryTurns(), loc),
		nil,
	)
	return a
}

func (a *app) close(ctx context.Context) {
	for _, c := range a.cleanups {
		if err := c.Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("cleanup failed")
		}
	}
}

// NewServices wires the long-running services for `campus serve`.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	a := newApp(ctx)
	services := make([]srv.Service, 0)

	// startup probe decides which providers form the working chain
	a.chain.Probe(ctx)

	var (
		stats  api.AttemptStats
		pruner keepalive.Pruner
	)
	if a.ledger != nil {
		stats, pruner = a.ledger, a.ledger
	}

	// 5. Background jobs
	services = append(services, keepalive.NewScheduler(keepalive.Config{
		PublicURL: a.cfg.PublicURL,
		PingSpec:  a.cfg.KeepAliveSpec,
		Cooldown:  a.cfg.ThrottleCooldown,
	}, a.chain.Throttle(), pruner))

	// 6. Transports
	services = append(services, api.NewServer(ctx, api.Config{
		Addr:             a.cfg.HTTPAddr,
		CORSOrigins:      a.cfg.CORSOrigins,
		ThrottleCooldown: a.cfg.ThrottleCooldown,
	}, a.orchestrator, stats))

	if a.cfg.IsTelegramSelected() {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), a.orchestrator)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	// storage closes last
	return append(services, a.cleanups...)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
