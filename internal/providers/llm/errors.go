package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Outcome is the classified result of one provider call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeTransport
	OutcomeSchema
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeTransport:
		return "transport"
	case OutcomeSchema:
		return "schema"
	default:
		return "unknown"
	}
}

var (
	ErrRateLimited = errors.New("provider rate limited")
	ErrTransport   = errors.New("provider transport failure")
	ErrSchema      = errors.New("provider response malformed")
)

// ProviderError is returned by every client on a failed call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string
	Type       string
	Message    string
	Outcome    Outcome
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *ProviderError) sentinel() error {
	switch e.Outcome {
	case OutcomeRateLimited:
		return ErrRateLimited
	case OutcomeSchema:
		return ErrSchema
	default:
		return ErrTransport
	}
}

var rateLimitCodes = map[string]bool{
	"rate_limit_exceeded": true,
	"insufficient_quota":  true,
	"resource_exhausted":  true,
	"rate_limit_error":    true,
	"overloaded_error":    true,
	"too_many_requests":   true,
}

// overload statuses are treated as a temporary capacity signal
var rateLimitStatuses = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	529:                           true,
}

var rateLimitVocabulary = []string{
	"rate limit",
	"rate_limit",
	"too many requests",
	"quota",
	"resource exhausted",
	"resource_exhausted",
	"overloaded",
}

// errorEnvelope covers the OpenAI, Groq, OpenRouter, Anthropic and Gemini error bodies.
type errorEnvelope struct {
	Error *struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
		Status  string          `json:"status"`
	} `json:"error"`
}

// newHTTPError builds a classified error from a non-2xx response.
func newHTTPError(provider string, status int, body []byte) *ProviderError {
	pe := &ProviderError{Provider: provider, StatusCode: status}
	parseErrorBody(pe, body)
	pe.Outcome = classify(pe)
	return pe
}

func parseErrorBody(pe *ProviderError, body []byte) {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		pe.Message = truncate(strings.TrimSpace(string(body)), 300)
		return
	}

	pe.Message = env.Error.Message
	pe.Type = env.Error.Type
	pe.Code = rawCode(env.Error.Code)
	if env.Error.Status != "" {
		// Gemini puts the symbolic code in "status" and the HTTP code in "code".
		pe.Code = env.Error.Status
	}
}

func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.Itoa(n)
	}
	return ""
}

func classify(pe *ProviderError) Outcome {
	if rateLimitStatuses[pe.StatusCode] {
		return OutcomeRateLimited
	}
	if rateLimitCodes[strings.ToLower(pe.Code)] || rateLimitCodes[strings.ToLower(pe.Type)] {
		return OutcomeRateLimited
	}
	if pe.Code == strconv.Itoa(http.StatusTooManyRequests) {
		return OutcomeRateLimited
	}
	if matchesVocabulary(pe.Message) {
		return OutcomeRateLimited
	}
	return OutcomeTransport
}

func matchesVocabulary(msg string) bool {
	msg = strings.ToLower(msg)
	for _, w := range rateLimitVocabulary {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}

// Classify maps any error returned by a ChatModel to an Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Outcome
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return OutcomeTransport
	}
	if matchesVocabulary(err.Error()) {
		return OutcomeRateLimited
	}
	return OutcomeTransport
}

func transportError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Outcome: OutcomeTransport, Err: err}
}

func schemaError(provider, msg string) *ProviderError {
	return &ProviderError{Provider: provider, Outcome: OutcomeSchema, Message: msg}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
