package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sandevgo/campusbot/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	Name         string
	BaseURL      string
	APIKey       string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig, opts ...Option) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.Name, cfg.BaseURL, cfg.APIKey, opts...),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) Complete(ctx context.Context, model string, messages []core.Message, maxTokens int) (string, error) {
	payload := map[string]any{
		"model":    model,
		"messages": messages,
	}
	if maxTokens > 0 {
		payload["max_tokens"] = maxTokens
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		return "", err
	}

	data, err := o.readBody(resp)
	if err != nil {
		return "", err
	}
	return o.parseResponse(data)
}

func (o *OpenAICompatible) parseResponse(data []byte) (string, error) {
	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", schemaError(o.name, fmt.Sprintf("decode: %v", err))
	}

	if len(result.Choices) == 0 {
		// OpenRouter reports upstream failures inside a 200 body
		var env errorEnvelope
		if json.Unmarshal(data, &env) == nil && env.Error != nil {
			pe := &ProviderError{Provider: o.name}
			parseErrorBody(pe, data)
			pe.Outcome = classify(pe)
			return "", pe
		}
		return "", schemaError(o.name, "empty choices")
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return "", schemaError(o.name, "empty content")
	}
	return text, nil
}
