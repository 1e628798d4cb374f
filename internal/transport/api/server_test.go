package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/providers/datasvc"
	"github.com/sandevgo/campusbot/internal/service/chain"
	"github.com/sandevgo/campusbot/internal/service/chat"
	"github.com/sandevgo/campusbot/internal/service/conversation"
	"github.com/sandevgo/campusbot/internal/service/fallback"
	"github.com/sandevgo/campusbot/internal/service/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tz = time.FixedZone("UTC+8", 8*3600)

func clock() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, tz) }

type fakeAssistant struct {
	reply     chat.Reply
	err       error
	health    chat.Health
	panics    bool
	user      string
	message   string
	cleared   string
	resets    int
	histories map[string][]core.Turn
}

func (f *fakeAssistant) Chat(_ context.Context, user, message string) (chat.Reply, error) {
	f.user, f.message = user, message
	if strings.TrimSpace(message) == "" {
		return chat.Reply{}, chat.ErrEmptyMessage
	}
	return f.reply, f.err
}

func (f *fakeAssistant) History(user string) []core.Turn {
	if h, ok := f.histories[user]; ok {
		return h
	}
	return []core.Turn{}
}

func (f *fakeAssistant) Clear(user string) { f.cleared = user }

func (f *fakeAssistant) Health(context.Context, time.Duration) chat.Health {
	if f.panics {
		panic("boom")
	}
	return f.health
}

func (f *fakeAssistant) ResetThrottle() { f.resets++ }

type fakeStats struct{}

func (fakeStats) AttemptStats(context.Context, time.Time) ([]core.AttemptStat, error) {
	return []core.AttemptStat{{Provider: "Gemini 1.5 Flash", Total: 3, OK: 1, RateLimited: 2}}, nil
}

func newTestServer(a Assistant, stats AttemptStats) *httptest.Server {
	s := NewServer(context.Background(), Config{CORSOrigins: []string{"http://localhost:5173"}, ThrottleCooldown: time.Hour}, a, stats)
	return httptest.NewServer(s.Handler())
}

func post(t *testing.T, url, body string, header http.Header) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestChat_ShowMyTasksEndToEnd(t *testing.T) {
	data := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tasks":
			_, _ = w.Write([]byte(`{"data":[
				{"_id":"t1","title":"Essay","class":"English","type":"assignment","priority":"high","dueDate":"2025-01-17"},
				{"_id":"t2","title":"Lab report","class":"Physics","type":"lab","priority":"medium","dueDate":"2025-01-20"}]}`))
		default:
			_, _ = w.Write([]byte(`{"data":[]}`))
		}
	}))
	defer data.Close()

	throttle := chain.NewThrottleState()
	orchestrator := chat.NewOrchestrator(
		datasvc.NewClient(data.URL),
		retriever.New(retriever.DefaultLimit, tz, retriever.WithClock(clock)),
		chain.New(nil, throttle),
		fallback.NewRenderer(tz, clock),
		conversation.NewStore(conversation.DefaultCapacity),
		chat.NewPromptBuilder(chat.ApproxTokenizer{}, 3000, 3, tz),
		clock,
	)

	server := newTestServer(orchestrator, nil)
	defer server.Close()

	resp, body := post(t, server.URL+"/chat", `{"message":"show my tasks","user_id":"alice"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	text, _ := body["response"].(string)
	assert.True(t, strings.HasPrefix(text, "📋 Your tasks (2 total):"), text)
	assert.Contains(t, text, "Essay")
	assert.Equal(t, float64(2), body["context_items_used"])
	assert.Equal(t, false, body["ai_powered"])
	assert.Equal(t, false, body["is_throttled"])
	assert.Equal(t, chat.FallbackModel, body["model_used"])
	assert.NotEmpty(t, body["response_html"])
	assert.NotEmpty(t, body["timestamp"])

	_, history := get(t, server.URL+"/chat/history/alice")
	assert.Equal(t, float64(1), history["count"])

	_, health := get(t, server.URL+"/health")
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, chat.ModeSmart, health["mode"])
	assert.Equal(t, true, health["service_functional"])
	assert.Equal(t, []any{}, health["working_models"])
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  any
	}{
		{name: "empty message", body: `{"message":"   "}`, wantStatus: http.StatusBadRequest, wantError: "Message is required"},
		{name: "missing message", body: `{}`, wantStatus: http.StatusBadRequest, wantError: "Message is required"},
		{name: "malformed body", body: `{"message":`, wantStatus: http.StatusBadRequest, wantError: "Message is required"},
		{name: "internal failure", body: `{"message":"hi"}`, err: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(&fakeAssistant{err: tt.err}, nil)
			defer server.Close()

			resp, body := post(t, server.URL+"/chat", tt.body, nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, apology, body["response"])
				assert.NotContains(t, body["response"], "db down")
			}
		})
	}
}

func TestChat_UserIDFromHeader(t *testing.T) {
	a := &fakeAssistant{reply: chat.Reply{Response: "ok"}}
	server := newTestServer(a, nil)
	defer server.Close()

	resp, _ := post(t, server.URL+"/chat", `{"message":"hi"}`, http.Header{"User-Id": {"bob"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob", a.user)

	_, _ = post(t, server.URL+"/chat", `{"message":"hi","user_id":"carol"}`, http.Header{"User-Id": {"bob"}})
	assert.Equal(t, "carol", a.user)
}

func TestHistoryAndClear(t *testing.T) {
	a := &fakeAssistant{histories: map[string][]core.Turn{
		"alice": {{User: "hi", Assistant: "hello", ContextUsed: 1}},
	}}
	server := newTestServer(a, nil)
	defer server.Close()

	_, body := get(t, server.URL+"/chat/history/alice")
	assert.Equal(t, float64(1), body["count"])
	turns := body["history"].([]any)
	require.Len(t, turns, 1)
	assert.Equal(t, "hello", turns[0].(map[string]any)["assistant"])

	_, body = get(t, server.URL+"/chat/history/nobody")
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []any{}, body["history"])

	resp, body := post(t, server.URL+"/chat/clear/alice", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Chat history cleared", body["message"])
	assert.Equal(t, "alice", a.cleared)
}

func TestHealth(t *testing.T) {
	reset := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	a := &fakeAssistant{health: chat.Health{
		Mode:              chat.ModeAIEnhanced,
		WorkingModels:     []string{"Gemini 1.5 Flash", "Llama 3.1 8B"},
		ThrottledModels:   []string{"Gemini 1.5 Flash"},
		ServiceFunctional: true,
		LastReset:         reset,
	}}
	server := newTestServer(a, fakeStats{})
	defer server.Close()

	_, body := get(t, server.URL+"/health")
	assert.Equal(t, chat.ModeAIEnhanced, body["mode"])
	assert.Equal(t, []any{"Gemini 1.5 Flash", "Llama 3.1 8B"}, body["working_models"])
	assert.Equal(t, []any{"Gemini 1.5 Flash"}, body["throttled_models"])
	assert.Equal(t, reset.Format(time.RFC3339), body["last_reset"])
	require.Len(t, body["attempts"], 1)

	resp, body := post(t, server.URL+"/health/reset", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Throttle state reset", body["message"])
	assert.Equal(t, 1, a.resets)
}

func TestHealth_ErrorMode(t *testing.T) {
	server := newTestServer(&fakeAssistant{panics: true}, nil)
	defer server.Close()

	resp, body := get(t, server.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, chat.ModeError, body["mode"])
	assert.Equal(t, false, body["service_functional"])
}

func TestCORS(t *testing.T) {
	server := newTestServer(&fakeAssistant{}, nil)
	defer server.Close()

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "http://localhost:5173", want: "http://localhost:5173"},
		{origin: "https://evil.example", want: ""},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/chat", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", tt.origin)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, tt.want, resp.Header.Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	}
}
