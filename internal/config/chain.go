package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChainEntry is one provider slot in the fallback order.
type ChainEntry struct {
	Kind  string `yaml:"kind"`
	Model string `yaml:"model"`
	Name  string `yaml:"name"`
}

type chainFile struct {
	Providers []ChainEntry `yaml:"providers"`
}

func DefaultChain() []ChainEntry {
	return []ChainEntry{
		{Kind: "gemini", Model: "gemini-1.5-flash", Name: "Gemini 1.5 Flash"},
		{Kind: "groq", Model: "llama-3.1-8b-instant", Name: "Llama 3.1 8B"},
		{Kind: "openrouter", Model: "deepseek/deepseek-chat", Name: "DeepSeek V3"},
		{Kind: "openai", Model: "gpt-4o-mini", Name: "GPT-4o mini"},
		{Kind: "anthropic", Model: "claude-3-5-haiku-latest", Name: "Claude 3.5 Haiku"},
		{Kind: "ollama", Model: "llama3.1", Name: "Ollama Llama 3.1"},
	}
}

// LoadChain reads the provider order from path. A missing file yields DefaultChain.
func LoadChain(path string) ([]ChainEntry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultChain(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chain file: %w", err)
	}

	var f chainFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse chain file %s: %w", path, err)
	}
	if len(f.Providers) == 0 {
		return DefaultChain(), nil
	}

	seen := make(map[string]bool, len(f.Providers))
	for i, e := range f.Providers {
		if e.Kind == "" || e.Model == "" {
			return nil, fmt.Errorf("chain entry %d: kind and model are required", i)
		}
		if e.Name == "" {
			f.Providers[i].Name = e.Model
		}
		name := f.Providers[i].Name
		if seen[name] {
			return nil, fmt.Errorf("chain entry %d: duplicate name %q", i, name)
		}
		seen[name] = true
	}
	return f.Providers, nil
}

// SaveChain writes entries in the format LoadChain reads.
func SaveChain(path string, entries []ChainEntry) error {
	data, err := yaml.Marshal(chainFile{Providers: entries})
	if err != nil {
		return fmt.Errorf("encode chain file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write chain file: %w", err)
	}
	return nil
}
