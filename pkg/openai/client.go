// Package openai wraps the OpenAI chat completions API behind a small
// interface.
package openai

import (
	"context"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rotisserie/eris"
)

// Client defines the OpenAI operations used by the analyzer.
type Client interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is our own request type for CreateChatCompletion.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int64
	Temperature *float64
	N           int64
}

// ChatResponse holds the content of every returned choice.
type ChatResponse struct {
	ID      string
	Model   string
	Choices []string
	Usage   TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Error is the SDK's API error type.
type Error = sdk.Error

type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new OpenAI client backed by the SDK. An empty baseURL
// keeps the SDK default, which lets OpenAI-compatible gateways be used.
func NewClient(apiKey, baseURL string, opts ...option.RequestOption) Client {
	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)
	return &sdkClient{client: sdk.NewClient(all...)}
}

func (c *sdkClient) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := []sdk.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, sdk.SystemMessage(req.System))
	}
	messages = append(messages, sdk.UserMessage(req.User))

	params := sdk.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(req.MaxTokens)
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	if req.N > 1 {
		params.N = sdk.Int(req.N)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: response has no choices")
	}

	out := &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, ch := range resp.Choices {
		out.Choices = append(out.Choices, ch.Message.Content)
	}
	return out, nil
}
