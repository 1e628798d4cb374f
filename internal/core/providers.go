package core

import (
	"context"
	"time"
)

// ChatModel is a single text-generation backend.
type ChatModel interface {
	Complete(ctx context.Context, model string, messages []Message, maxTokens int) (string, error)
}

type ProviderKind string

const (
	ProviderGemini     ProviderKind = "gemini"
	ProviderOpenRouter ProviderKind = "openrouter"
	ProviderGroq       ProviderKind = "groq"
	ProviderOpenAI     ProviderKind = "openai"
	ProviderAnthropic  ProviderKind = "anthropic"
	ProviderOllama     ProviderKind = "ollama"
)

// ProviderDescriptor identifies one entry of the provider chain. Availability
// is decided once, when the descriptor is built.
type ProviderDescriptor struct {
	Kind      ProviderKind
	Model     string
	Name      string
	Available bool
}

// DataSource supplies the facts a request is answered from.
type DataSource interface {
	FetchAll(ctx context.Context) Facts
	Ping(ctx context.Context) bool
}

type Attempt struct {
	Provider string
	Outcome  string
	Latency  time.Duration
	Error    string
}
