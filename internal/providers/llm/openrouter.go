package llm

import "github.com/sandevgo/campusbot/internal/core"

const repositoryURL = "https://github.com/sandevgo/campusbot"

type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(apiKey string, opts ...Option) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       "openrouter",
			BaseURL:    "https://openrouter.ai/api",
			APIKey:     apiKey,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"HTTP-Referer": repositoryURL,
				"X-Title":      core.CampusName,
			},
		}, opts...),
	}
}
