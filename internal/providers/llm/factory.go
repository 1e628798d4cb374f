package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/campusbot/internal/config"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/pkg/log"
)

// NewChatModel creates the client for one provider kind.
func NewChatModel(kind core.ProviderKind, creds Credentials, opts ...Option) (core.ChatModel, error) {
	switch kind {
	case core.ProviderGemini:
		return NewGemini(creds.GetGeminiAPIKey(), opts...), nil
	case core.ProviderOpenRouter:
		return NewOpenRouter(creds.GetOpenRouterAPIKey(), opts...), nil
	case core.ProviderGroq:
		return NewGroq(creds.GetGroqAPIKey(), opts...), nil
	case core.ProviderOpenAI:
		return NewOpenAI(creds.GetOpenAIAPIKey(), opts...), nil
	case core.ProviderAnthropic:
		return NewAnthropic(creds.GetAnthropicAPIKey(), opts...), nil
	case core.ProviderOllama:
		return NewOllama(creds.GetOllamaBaseURL(), opts...), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", kind)
	}
}

// Entry pairs a descriptor with the client that serves it.
type Entry struct {
	Descriptor core.ProviderDescriptor
	Model      core.ChatModel
}

// NewEntries builds the ordered provider chain. Clients of one kind are shared.
func NewEntries(ctx context.Context, chain []config.ChainEntry, creds Credentials) ([]Entry, error) {
	logger := log.FromCtx(ctx)
	clients := make(map[core.ProviderKind]core.ChatModel)
	entries := make([]Entry, 0, len(chain))

	for _, c := range chain {
		kind := core.ProviderKind(c.Kind)
		client, ok := clients[kind]
		if !ok {
			var err error
			client, err = NewChatModel(kind, creds)
			if err != nil {
				return nil, err
			}
			clients[kind] = client
		}

		d := NewDescriptor(kind, c.Model, c.Name, creds)
		logger.Info().
			Str("provider", string(d.Kind)).
			Str("model", d.Model).
			Bool("available", d.Available).
			Msgf("registered %s", d.Name)

		entries = append(entries, Entry{Descriptor: d, Model: client})
	}
	return entries, nil
}
