package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	delay time.Duration
	reply string
	err   error
}

func (s *stubProvider) Name() string { return "stub/test" }

func (s *stubProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	// ignores ctx on purpose to model a backend that never gives up
	time.Sleep(s.delay)
	return s.reply, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return s.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts...)
}

func TestWithTimeout_PassesThroughFastReplies(t *testing.T) {
	p := WithTimeout(&stubProvider{reply: "hi there"}, time.Second)

	text, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
	assert.Equal(t, "stub/test", p.Name())
}

func TestWithTimeout_SlowBackendTimesOut(t *testing.T) {
	p := WithTimeout(&stubProvider{delay: 500 * time.Millisecond, reply: "late"}, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestWithTimeout_ClassifiesBackendErrors(t *testing.T) {
	p := WithTimeout(&stubProvider{err: errors.New("boom")}, time.Second)

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindGeneric, pe.Kind)
}

func TestWithTimeout_ZeroUsesDefault(t *testing.T) {
	p := WithTimeout(&stubProvider{}, 0).(*timeoutProvider)
	assert.Equal(t, DefaultTimeout, p.timeout)
}
