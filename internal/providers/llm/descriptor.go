package llm

import (
	"strings"

	"github.com/sandevgo/campusbot/internal/core"
)

// Credentials exposes the secret each provider kind needs.
type Credentials interface {
	GetGeminiAPIKey() string
	GetOpenRouterAPIKey() string
	GetGroqAPIKey() string
	GetOpenAIAPIKey() string
	GetAnthropicAPIKey() string
	GetOllamaBaseURL() string
}

func credentialFor(kind core.ProviderKind, creds Credentials) string {
	switch kind {
	case core.ProviderGemini:
		return creds.GetGeminiAPIKey()
	case core.ProviderOpenRouter:
		return creds.GetOpenRouterAPIKey()
	case core.ProviderGroq:
		return creds.GetGroqAPIKey()
	case core.ProviderOpenAI:
		return creds.GetOpenAIAPIKey()
	case core.ProviderAnthropic:
		return creds.GetAnthropicAPIKey()
	case core.ProviderOllama:
		return creds.GetOllamaBaseURL()
	default:
		return ""
	}
}

// NewDescriptor resolves availability from credential presence. The result is
// never changed afterwards.
func NewDescriptor(kind core.ProviderKind, model, name string, creds Credentials) core.ProviderDescriptor {
	if name == "" {
		name = model
	}
	return core.ProviderDescriptor{
		Kind:      kind,
		Model:     model,
		Name:      name,
		Available: strings.TrimSpace(credentialFor(kind, creds)) != "",
	}
}
