package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaProvider(srv.URL+"/", "tiny")
}

func TestOllamaProvider_Chat(t *testing.T) {
	var got chatRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatTurn{Role: "assistant", Content: "hi there"},
			Done:    true,
		})
	})

	text, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "hey"},
		{Role: llm.RoleUser, Content: "again"},
	}, llm.WithMaxTokens(20))
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)

	assert.Equal(t, "tiny", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	require.NotNil(t, got.Options)
	assert.Equal(t, 20, got.Options.NumPredict)
	assert.Equal(t, "ollama/tiny", p.Name())
}

func TestOllamaProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    llm.ErrorKind
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			kind: llm.KindRateLimited,
		},
		{
			name: "unknown model",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model not found"}`))
			},
			kind: llm.KindBadRequest,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			kind: llm.KindGeneric,
		},
		{
			name: "empty reply",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(chatResponse{Done: true, DoneReason: "length"})
			},
			kind: llm.KindGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.handler)
			_, err := p.Generate(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tt.kind, llm.KindOf(err))
		})
	}
}

func TestOllamaProvider_RejectsBadHistoryWithoutCalling(t *testing.T) {
	called := false
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := p.Chat(context.Background(), []llm.Message{{Role: "system", Content: "x"}})
	assert.Equal(t, llm.KindBadRequest, llm.KindOf(err))
	assert.False(t, called)
}

func TestOllamaProvider_Deadline(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, "hello")
	assert.Equal(t, llm.KindTimeout, llm.KindOf(err))
}
