package llm

// Groq speaks the OpenAI chat completions wire format under /openai.
type Groq struct {
	*OpenAICompatible
}

func NewGroq(apiKey string, opts ...Option) *Groq {
	return &Groq{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       "groq",
			BaseURL:    "https://api.groq.com/openai",
			APIKey:     apiKey,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}, opts...),
	}
}
