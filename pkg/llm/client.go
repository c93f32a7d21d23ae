// Package llm wraps the OpenRouter chat-completion API. OpenRouter speaks
// the OpenAI wire protocol, so the client is an openai-go client pointed at
// the OpenRouter base URL. Keys are supplied per call so the orchestrator
// can rotate pool keys without rebuilding clients.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// requestTimeout bounds a single chat completion.
	requestTimeout = 60 * time.Second
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// ChatRequest is a provider call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatResponse carries the top choice's message content. The script text is
// stored verbatim; no length or formatting validation is applied.
type ChatResponse struct {
	Content string
	Model   string
	Elapsed time.Duration
}

// Client calls OpenRouter.
type Client struct {
	api openai.Client
}

// NewClient creates a client for the given base URL ("" for production).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		api: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey("unset"), // replaced per call
			option.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
			option.WithMaxRetries(0), // retry policy belongs to the caller
		),
	}
}

// ChatCompletion issues one chat completion with the given key.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest, key string) (ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		return ChatResponse{}, wrapProviderError("chat completion", err)
	}
	if len(completion.Choices) == 0 {
		return ChatResponse{}, &ProviderError{Code: CodeValidationFailed, Err: errors.New("empty choices in response")}
	}

	return ChatResponse{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
		Elapsed: time.Since(start),
	}, nil
}

// ListModels lists the models visible to the given key and returns their ids.
func (c *Client) ListModels(ctx context.Context, key string) ([]string, error) {
	page, err := c.api.Models.List(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, wrapProviderError("list models", err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func wrapProviderError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			StatusCode: apiErr.StatusCode,
			Code:       codeForStatus(apiErr.StatusCode),
			Err:        fmt.Errorf("%s: %w", op, err),
		}
	}
	// No HTTP status at all: connection refused, DNS failure, timeout.
	return &ProviderError{
		Code: CodeNetworkError,
		Err:  fmt.Errorf("%s: %w", op, err),
	}
}
