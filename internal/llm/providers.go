package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	anthopt "github.com/anthropics/anthropic-sdk-go/option"
	oaiopt "github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/pkg/anthropic"
	"github.com/sells-group/site-analyzer/pkg/gemini"
	"github.com/sells-group/site-analyzer/pkg/openai"
)

// Gemini adapts a gemini.Client.
type Gemini struct {
	client gemini.Client
	model  string
}

// NewGemini returns a Generator backed by client.
func NewGemini(client gemini.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

func (g *Gemini) Provider() string { return config.ProviderGemini }
func (g *Gemini) Model() string    { return g.model }

func (g *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := g.client.GenerateContent(ctx, gemini.GenerateRequest{
		Model:           g.model,
		System:          req.System,
		Prompt:          req.Prompt,
		Temperature:     req.Config.Temperature,
		MaxOutputTokens: req.Config.MaxOutputTokens,
		CandidateCount:  req.Config.CandidateCount,
	})
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: g.Provider(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, &ProviderError{Provider: g.Provider(), Err: err}
	}
	return &Response{
		Text:       resp.Text(),
		Candidates: resp.Candidates,
		Usage:      Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CandidateTokens},
	}, nil
}

// Anthropic adapts an anthropic.Client. The Messages API returns a single
// candidate, so CandidateCount is ignored.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic returns a Generator backed by client.
func NewAnthropic(client anthropic.Client, model string) *Anthropic {
	return &Anthropic{client: client, model: model}
}

func (a *Anthropic) Provider() string { return config.ProviderAnthropic }
func (a *Anthropic) Model() string    { return a.model }

func (a *Anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	temp := req.Config.Temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   int64(req.Config.MaxOutputTokens),
		System:      req.System,
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: a.Provider(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, &ProviderError{Provider: a.Provider(), Err: err}
	}
	resp.Usage.LogCost(a.model)

	text := resp.Text()
	return &Response{
		Text:       text,
		Candidates: []string{text},
		Usage:      Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}, nil
}

// OpenAI adapts an openai.Client.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI returns a Generator backed by client.
func NewOpenAI(client openai.Client, model string) *OpenAI {
	return &OpenAI{client: client, model: model}
}

func (o *OpenAI) Provider() string { return config.ProviderOpenAI }
func (o *OpenAI) Model() string    { return o.model }

func (o *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	temp := req.Config.Temperature
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatRequest{
		Model:       o.model,
		System:      req.System,
		User:        req.Prompt,
		MaxTokens:   int64(req.Config.MaxOutputTokens),
		Temperature: &temp,
		N:           int64(req.Config.CandidateCount),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: o.Provider(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, &ProviderError{Provider: o.Provider(), Err: err}
	}
	zap.L().Debug("openai usage",
		zap.String("model", o.model),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return &Response{
		Text:       resp.Choices[0],
		Candidates: resp.Choices,
		Usage:      Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
	}, nil
}

func newGeminiClient(p config.ProviderConfig, timeout time.Duration) gemini.Client {
	var opts []gemini.Option
	if p.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(p.BaseURL))
	}
	if timeout > 0 {
		opts = append(opts, gemini.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return gemini.NewClient(p.Key, opts...)
}

// SDK-level retries are disabled; Resilient owns the retry policy.
func newAnthropicClient(p config.ProviderConfig, timeout time.Duration) anthropic.Client {
	opts := []anthopt.RequestOption{anthopt.WithMaxRetries(0)}
	if p.BaseURL != "" {
		opts = append(opts, anthopt.WithBaseURL(p.BaseURL))
	}
	if timeout > 0 {
		opts = append(opts, anthopt.WithRequestTimeout(timeout))
	}
	return anthropic.NewClient(p.Key, opts...)
}

func newOpenAIClient(p config.ProviderConfig, timeout time.Duration) openai.Client {
	opts := []oaiopt.RequestOption{oaiopt.WithMaxRetries(0)}
	if timeout > 0 {
		opts = append(opts, oaiopt.WithRequestTimeout(timeout))
	}
	return openai.NewClient(p.Key, p.BaseURL, opts...)
}
