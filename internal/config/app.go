package config

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/campusbot/pkg/log"
)

const (
	minContextItems = 10
	maxContextItems = 15
)

type AppConfig struct {
	RuntimePath string `env:"CAMPUS_RUNTIME_PATH" envDefault:".campusbot"`

	HTTPAddr    string   `env:"CAMPUS_HTTP_ADDR" envDefault:":5002"`
	DataAPIURL  string   `env:"CAMPUS_DATA_API_URL" envDefault:"http://localhost:3000"`
	CORSOrigins []string `env:"CAMPUS_CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// Keep-alive
	PublicURL        string        `env:"CAMPUS_PUBLIC_URL"`
	KeepAliveSpec    string        `env:"CAMPUS_KEEPALIVE_SPEC" envDefault:"@every 14m"`
	ThrottleCooldown time.Duration `env:"CAMPUS_THROTTLE_COOLDOWN" envDefault:"30m"`

	// Prompt assembly
	ContextItems      int `env:"CAMPUS_CONTEXT_ITEMS" envDefault:"10"`
	HistoryTurns      int `env:"CAMPUS_HISTORY_TURNS" envDefault:"3"`
	PromptTokenBudget int `env:"CAMPUS_PROMPT_TOKEN_BUDGET" envDefault:"3000"`
	TZOffsetHours     int `env:"CAMPUS_TZ_OFFSET_HOURS" envDefault:"8"`

	AttemptsDB string `env:"CAMPUS_ATTEMPTS_DB" envDefault:"attempts.db"`

	// Transport Flags
	EnableTelegram bool `env:"CAMPUS_ENABLE_TELEGRAM" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

// GetAttemptsDBPath returns "" when the ledger is switched off.
func (c AppConfig) GetAttemptsDBPath() string {
	if c.AttemptsDB == "" || strings.EqualFold(c.AttemptsDB, "off") {
		return ""
	}
	if filepath.IsAbs(c.AttemptsDB) {
		return c.AttemptsDB
	}
	return filepath.Join(c.RuntimePath, c.AttemptsDB)
}

func (c AppConfig) GetChainConfigPath() string {
	return filepath.Join(c.RuntimePath, "providers.yaml")
}

func (c AppConfig) GetContextItems() int {
	switch {
	case c.ContextItems < minContextItems:
		return minContextItems
	case c.ContextItems > maxContextItems:
		return maxContextItems
	}
	return c.ContextItems
}

func (c AppConfig) GetHistoryTurns() int {
	if c.HistoryTurns < 0 {
		return 0
	}
	return c.HistoryTurns
}

func (c AppConfig) GetPromptTokenBudget() int {
	return c.PromptTokenBudget
}

// GetLocation is the fixed reference zone "today" and "tomorrow" resolve in.
func (c AppConfig) GetLocation() *time.Location {
	return time.FixedZone("campus", c.TZOffsetHours*3600)
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
