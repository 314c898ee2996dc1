package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"ai-chat-be/pkg/llm"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
)

// OllamaProvider talks to a local or self-hosted Ollama server through the
// non-streaming /api/chat endpoint.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client:    &http.Client{},
	}
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sampling struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string     `json:"model"`
	Messages []chatTurn `json:"messages"`
	Stream   bool       `json:"stream"`
	Options  *sampling  `json:"options,omitempty"`
}

type chatResponse struct {
	Message    chatTurn `json:"message"`
	Done       bool     `json:"done"`
	DoneReason string   `json:"done_reason,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (o *OllamaProvider) Name() string {
	return "ollama/" + o.ModelName
}

// Chat forwards the turns unchanged; Ollama already speaks user/assistant.
func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if err := llm.ValidateHistory(history); err != nil {
		return "", err
	}
	options := llm.ApplyOptions(opts...)

	turns := make([]chatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, chatTurn{Role: m.Role, Content: m.Content})
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: turns,
		Options:  &sampling{Temperature: options.Temperature, NumPredict: options.MaxTokens},
	})
	if err != nil {
		return "", llm.NewError(llm.KindGeneric, "marshal request", err)
	}

	raw, err := o.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}

	var res chatResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", llm.NewError(llm.KindGeneric, "malformed response", err)
	}
	if res.Error != "" {
		return "", llm.NewError(llm.KindGeneric, res.Error, nil)
	}
	if !res.Done || strings.TrimSpace(res.Message.Content) == "" {
		return "", llm.NewError(llm.KindGeneric, "incomplete response (done_reason="+res.DoneReason+")", nil)
	}

	return res.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// post sends body and returns the response payload; non-200 answers become
// classified provider errors.
func (o *OllamaProvider) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, llm.NewError(llm.KindGeneric, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := o.Client.Do(req)
	if err != nil {
		return nil, llm.Classify(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, llm.Classify(err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, llm.StatusError(res.StatusCode, string(raw))
	}
	return raw, nil
}
