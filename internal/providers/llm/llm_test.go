package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/campusbot/internal/config"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessages = []core.Message{
	{Role: core.RoleSystem, Content: "You are a helpful academic schedule assistant."},
	{Role: core.RoleUser, Content: "What is due tomorrow?"},
}

func fakeServer(t *testing.T, status int, body string, inspect func(r *http.Request, payload map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			var payload map[string]any
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &payload)
			inspect(r, payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAICompatible_Complete(t *testing.T) {
	server := fakeServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":" Essay is due tomorrow. "}}]}`,
		func(r *http.Request, payload map[string]any) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.Equal(t, "llama-3.1-8b-instant", payload["model"])
			assert.EqualValues(t, 256, payload["max_tokens"])
		})

	text, err := NewGroq("secret", WithBaseURL(server.URL)).Complete(context.Background(), "llama-3.1-8b-instant", testMessages, 256)
	require.NoError(t, err)
	assert.Equal(t, "Essay is due tomorrow.", text)
}

func TestGemini_Complete(t *testing.T) {
	server := fakeServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"You have Math at 9:00."}]}}]}`,
		func(r *http.Request, payload map[string]any) {
			assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
			assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
			assert.Contains(t, payload, "systemInstruction")
		})

	text, err := NewGemini("key", WithBaseURL(server.URL)).Complete(context.Background(), "gemini-1.5-flash", testMessages, 0)
	require.NoError(t, err)
	assert.Equal(t, "You have Math at 9:00.", text)
}

func TestAnthropic_Complete(t *testing.T) {
	server := fakeServer(t, http.StatusOK, `{"content":[{"type":"text","text":"Lab report first."}]}`,
		func(r *http.Request, payload map[string]any) {
			assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
			assert.Equal(t, "You are a helpful academic schedule assistant.", payload["system"])
		})

	text, err := NewAnthropic("key", WithBaseURL(server.URL)).Complete(context.Background(), "claude-3-5-haiku-latest", testMessages, 100)
	require.NoError(t, err)
	assert.Equal(t, "Lab report first.", text)
}

func TestComplete_Classification(t *testing.T) {
	tests := []struct {
		name    string
		client  func(url string) core.ChatModel
		status  int
		body    string
		outcome Outcome
		target  error
	}{
		{
			name:    "openai 429",
			client:  func(u string) core.ChatModel { return NewOpenAI("k", WithBaseURL(u)) },
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`,
			outcome: OutcomeRateLimited,
			target:  ErrRateLimited,
		},
		{
			name:    "openai quota on 400",
			client:  func(u string) core.ChatModel { return NewOpenAI("k", WithBaseURL(u)) },
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"billing","type":"insufficient_quota","code":null}}`,
			outcome: OutcomeRateLimited,
			target:  ErrRateLimited,
		},
		{
			name:    "gemini resource exhausted",
			client:  func(u string) core.ChatModel { return NewGemini("k", WithBaseURL(u)) },
			status:  http.StatusForbidden,
			body:    `{"error":{"code":403,"message":"no","status":"RESOURCE_EXHAUSTED"}}`,
			outcome: OutcomeRateLimited,
			target:  ErrRateLimited,
		},
		{
			name:    "anthropic overloaded",
			client:  func(u string) core.ChatModel { return NewAnthropic("k", WithBaseURL(u)) },
			status:  529,
			body:    `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			outcome: OutcomeRateLimited,
			target:  ErrRateLimited,
		},
		{
			name:    "auth failure is transport",
			client:  func(u string) core.ChatModel { return NewOpenAI("k", WithBaseURL(u)) },
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"Invalid API key","type":"invalid_request_error","code":"invalid_api_key"}}`,
			outcome: OutcomeTransport,
			target:  ErrTransport,
		},
		{
			name:    "empty choices is schema",
			client:  func(u string) core.ChatModel { return NewOpenRouter("k", WithBaseURL(u)) },
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			outcome: OutcomeSchema,
			target:  ErrSchema,
		},
		{
			name:    "openrouter error inside 200",
			client:  func(u string) core.ChatModel { return NewOpenRouter("k", WithBaseURL(u)) },
			status:  http.StatusOK,
			body:    `{"error":{"code":429,"message":"Provider returned error"}}`,
			outcome: OutcomeRateLimited,
			target:  ErrRateLimited,
		},
		{
			name:    "plain text body with quota wording",
			client:  func(u string) core.ChatModel { return NewGroq("k", WithBaseURL(u)) },
			status:  http.StatusBadRequest,
			body:    `You exceeded your current quota`,
			outcome: OutcomeRateLimited,
			target:  ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := fakeServer(t, tt.status, tt.body, nil)

			_, err := tt.client(server.URL).Complete(context.Background(), "m", testMessages, 0)
			require.Error(t, err)

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.outcome, pe.Outcome)
			assert.Equal(t, tt.outcome, Classify(err))
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestClassify_PlainErrors(t *testing.T) {
	assert.Equal(t, OutcomeOK, Classify(nil))
	assert.Equal(t, OutcomeTransport, Classify(context.DeadlineExceeded))
	assert.Equal(t, OutcomeRateLimited, Classify(errors.New("429 Too Many Requests")))
	assert.Equal(t, OutcomeTransport, Classify(errors.New("connection refused")))
}

func TestComplete_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewOpenAI("k", WithBaseURL(url)).Complete(context.Background(), "m", testMessages, 0)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, OutcomeTransport, Classify(err))
}

func TestNewDescriptor(t *testing.T) {
	creds := config.ProvidersConfig{GroqAPIKey: "gsk", OllamaBaseURL: "  "}

	groq := NewDescriptor(core.ProviderGroq, "llama-3.1-8b-instant", "Llama 3.1 8B", creds)
	assert.True(t, groq.Available)
	assert.Equal(t, "Llama 3.1 8B", groq.Name)

	gemini := NewDescriptor(core.ProviderGemini, "gemini-1.5-flash", "", creds)
	assert.False(t, gemini.Available)
	assert.Equal(t, "gemini-1.5-flash", gemini.Name)

	assert.False(t, NewDescriptor(core.ProviderOllama, "llama3.1", "local", creds).Available)
}

func TestNewEntries(t *testing.T) {
	creds := config.ProvidersConfig{GeminiAPIKey: "g"}
	entries, err := NewEntries(context.Background(), config.DefaultChain(), creds)
	require.NoError(t, err)
	require.Len(t, entries, len(config.DefaultChain()))

	assert.True(t, entries[0].Descriptor.Available)
	assert.False(t, entries[1].Descriptor.Available)

	_, err = NewEntries(context.Background(), []config.ChainEntry{{Kind: "mystery", Model: "x"}}, creds)
	assert.Error(t, err)
}
