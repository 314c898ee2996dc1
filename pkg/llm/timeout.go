package llm

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 10 * time.Second

type timeoutProvider struct {
	next    LLMProvider
	timeout time.Duration
}

// WithTimeout wraps p so that every call is bounded by d. A call that
// outlives d fails with KindTimeout even if the backend ignores ctx.
func WithTimeout(p LLMProvider, d time.Duration) LLMProvider {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutProvider{next: p, timeout: d}
}

func (t *timeoutProvider) Name() string {
	return t.next.Name()
}

func (t *timeoutProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	return t.race(ctx, func(ctx context.Context) (string, error) {
		return t.next.Chat(ctx, history, opts...)
	})
}

func (t *timeoutProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return t.race(ctx, func(ctx context.Context) (string, error) {
		return t.next.Generate(ctx, prompt, opts...)
	})
}

type result struct {
	text string
	err  error
}

func (t *timeoutProvider) race(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := call(ctx)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", Classify(r.err)
		}
		return r.text, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", NewError(KindGeneric, "request canceled", ctx.Err())
		}
		return "", NewError(KindTimeout, "request timed out after "+t.timeout.String(), ctx.Err())
	}
}
