package llm

import "strings"

// Ollama serves the OpenAI-compatible API on the local daemon. No key is needed.
type Ollama struct {
	*OpenAICompatible
}

func NewOllama(baseURL string, opts ...Option) *Ollama {
	return &Ollama{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:    "ollama",
			BaseURL: strings.TrimRight(baseURL, "/"),
		}, opts...),
	}
}
