package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewGeminiProvider("test-key", "")
	p.BaseURL = srv.URL
	return p
}

func TestGeminiProvider_Chat(t *testing.T) {
	var got geminiRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DefaultModel+":generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(geminiResponse{Candidates: []geminiCandidate{{
			Content: &geminiContent{Role: roleModel, Parts: []geminiPart{{Text: "hi "}, {Text: "there"}}},
		}}})
	})

	text, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "hey"},
		{Role: llm.RoleUser, Content: "how are you"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)

	require.Len(t, got.Contents, 3)
	assert.Equal(t, roleUser, got.Contents[0].Role)
	assert.Equal(t, roleModel, got.Contents[1].Role)
	assert.Equal(t, "how are you", got.Contents[2].Parts[0].Text)
	assert.Equal(t, "gemini/gemini-2.5-flash", p.Name())
}

func TestGeminiProvider_ClassifiesStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   llm.ErrorKind
	}{
		{http.StatusTooManyRequests, llm.KindRateLimited},
		{http.StatusForbidden, llm.KindUnauthorized},
		{http.StatusBadRequest, llm.KindBadRequest},
		{http.StatusInternalServerError, llm.KindGeneric},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"nope"}}`, tc.status)
			})
			_, err := p.Generate(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tc.kind, llm.KindOf(err))
		})
	}
}

func TestGeminiProvider_MalformedResponse(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, llm.KindGeneric, llm.KindOf(err))
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	p := NewGeminiProvider("", "")
	_, err := p.Generate(context.Background(), "hello")
	assert.Equal(t, llm.KindUnauthorized, llm.KindOf(err))
}

func TestGeminiProvider_RejectsInvalidHistoryBeforeCalling(t *testing.T) {
	called := false
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	_, err := p.Chat(context.Background(), nil)
	assert.Equal(t, llm.KindBadRequest, llm.KindOf(err))
	assert.False(t, called)
}
