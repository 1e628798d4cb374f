package installer

import "github.com/sandevgo/campusbot/internal/config"

// EnvFile is what the wizard writes to .env. Zero values are omitted.
type EnvFile struct {
	DataAPIURL string `env:"CAMPUS_DATA_API_URL"`
	PublicURL  string `env:"CAMPUS_PUBLIC_URL"`

	GeminiAPIKey     string `env:"CAMPUS_GEMINI_API_KEY"`
	GroqAPIKey       string `env:"CAMPUS_GROQ_API_KEY"`
	OpenRouterAPIKey string `env:"CAMPUS_OPENROUTER_API_KEY"`
	OpenAIAPIKey     string `env:"CAMPUS_OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"CAMPUS_ANTHROPIC_API_KEY"`
	OllamaBaseURL    string `env:"CAMPUS_OLLAMA_BASE_URL"`

	EnableTelegram  bool   `env:"CAMPUS_ENABLE_TELEGRAM"`
	TelegramToken   string `env:"TELEGRAM_TOKEN"`
	TelegramOwnerID int64  `env:"TELEGRAM_OWNER_ID"`
}

type InstallState struct {
	RuntimePath string
	Env         EnvFile

	// Provider kinds picked in the provider step, in chain order.
	Providers []string
	// Raw owner id as typed; parsed during finalization.
	OwnerID string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{RuntimePath: runtimePath}
}

func (s *InstallState) hasProvider(kind string) bool {
	for _, p := range s.Providers {
		if p == kind {
			return true
		}
	}
	return false
}

// Chain returns the default chain restricted to the selected providers.
func (s *InstallState) Chain() []config.ChainEntry {
	var out []config.ChainEntry
	for _, e := range config.DefaultChain() {
		if s.hasProvider(e.Kind) {
			out = append(out, e)
		}
	}
	return out
}
