package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/campusbot/pkg/log"
)

// ProvidersConfig carries provider credentials. An empty key leaves the
// matching descriptor unavailable.
type ProvidersConfig struct {
	GeminiAPIKey     string `env:"CAMPUS_GEMINI_API_KEY"`
	OpenRouterAPIKey string `env:"CAMPUS_OPENROUTER_API_KEY"`
	GroqAPIKey       string `env:"CAMPUS_GROQ_API_KEY"`
	OpenAIAPIKey     string `env:"CAMPUS_OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"CAMPUS_ANTHROPIC_API_KEY"`
	OllamaBaseURL    string `env:"CAMPUS_OLLAMA_BASE_URL"`

	MaxTokens int `env:"CAMPUS_MAX_TOKENS" envDefault:"1024"`
}

func NewProvidersConfig(ctx context.Context) *ProvidersConfig {
	c := &ProvidersConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Providers config")
	}
	return c
}

func (c ProvidersConfig) GetGeminiAPIKey() string     { return c.GeminiAPIKey }
func (c ProvidersConfig) GetOpenRouterAPIKey() string { return c.OpenRouterAPIKey }
func (c ProvidersConfig) GetGroqAPIKey() string       { return c.GroqAPIKey }
func (c ProvidersConfig) GetOpenAIAPIKey() string     { return c.OpenAIAPIKey }
func (c ProvidersConfig) GetAnthropicAPIKey() string  { return c.AnthropicAPIKey }
func (c ProvidersConfig) GetOllamaBaseURL() string    { return c.OllamaBaseURL }
