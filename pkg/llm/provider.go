package llm

import (
	"context"
	"fmt"
	"unicode/utf8"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MaxHistoryChars caps the combined content sent in one completion.
	MaxHistoryChars = 10000
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// ApplyOptions folds opts over the defaults.
func ApplyOptions(opts ...Option) *Options {
	options := &Options{Temperature: 0.7}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Name identifies the backend and model, e.g. "gemini/gemini-2.5-flash".
	Name() string
}

// ValidateHistory rejects histories no provider should receive.
func ValidateHistory(history []Message) error {
	if len(history) == 0 {
		return NewError(KindBadRequest, "chat history cannot be empty", nil)
	}
	total := 0
	for i, msg := range history {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			return NewError(KindBadRequest, fmt.Sprintf("invalid message role %q at %d", msg.Role, i), nil)
		}
		total += utf8.RuneCountInString(msg.Content)
	}
	if total > MaxHistoryChars {
		return NewError(KindBadRequest, fmt.Sprintf("input too long (%d > %d characters)", total, MaxHistoryChars), nil)
	}
	return nil
}
