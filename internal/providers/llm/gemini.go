package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandevgo/campusbot/internal/core"
)

// Gemini calls the generateContent REST endpoint directly.
type Gemini struct {
	baseProvider
}

func NewGemini(apiKey string, opts ...Option) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider("gemini", "https://generativelanguage.googleapis.com", apiKey, opts...),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (g *Gemini) Complete(ctx context.Context, model string, history []core.Message, maxTokens int) (string, error) {
	var system []geminiPart
	contents := make([]geminiContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, geminiPart{Text: m.Content})
		case core.RoleAssistant:
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	payload := map[string]any{
		"contents": contents,
	}
	if len(system) > 0 {
		payload["systemInstruction"] = geminiContent{Parts: system}
	}
	if maxTokens > 0 {
		payload["generationConfig"] = map[string]any{"maxOutputTokens": maxTokens}
	}

	headers := map[string]string{
		"x-goog-api-key": g.apiKey,
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(model))
	resp, err := g.doRequest(ctx, http.MethodPost, path, payload, headers)
	if err != nil {
		return "", err
	}

	data, err := g.readBody(resp)
	if err != nil {
		return "", err
	}

	var result struct {
		Candidates []struct {
			Content      geminiContent `json:"content"`
			FinishReason string        `json:"finishReason"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", schemaError(g.name, fmt.Sprintf("decode: %v", err))
	}
	if len(result.Candidates) == 0 {
		return "", schemaError(g.name, "no candidates")
	}

	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", schemaError(g.name, "empty candidate, finish reason "+result.Candidates[0].FinishReason)
	}
	return strings.TrimSpace(text.String()), nil
}
