package factory

import (
	"fmt"

	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/llm/gemini"
	"ai-chat-be/pkg/llm/ollama"
	"ai-chat-be/pkg/llm/openai"
)

type Settings struct {
	Provider string // "gemini", "ollama" or "openai"
	Model    string
	APIKey   string
	BaseURL  string
}

// NewLLMProvider builds the configured backend. The result is not yet
// bounded by a timeout; wrap it with llm.WithTimeout.
func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "gemini", "":
		p := gemini.NewGeminiProvider(s.APIKey, s.Model)
		if s.BaseURL != "" {
			p.BaseURL = s.BaseURL
		}
		return p, nil
	case "ollama":
		return ollama.NewOllamaProvider(s.BaseURL, s.Model), nil
	case "openai":
		return openai.NewOpenAIProvider(s.APIKey, s.Model, s.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
