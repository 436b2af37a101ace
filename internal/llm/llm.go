// Package llm adapts hosted language model providers to a single Generator
// interface used by the analyzer.
package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/resilience"
)

// GenerationConfig is the immutable per-call generation setting.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	CandidateCount  int     `json:"candidate_count"`
}

// Request is a single generation call.
type Request struct {
	System string
	Prompt string
	Config GenerationConfig
}

// Usage tracks token consumption of a call.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Response holds the generated text. Text is the first candidate.
type Response struct {
	Text       string
	Candidates []string
	Usage      Usage
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Provider() string
	Model() string
}

// GenerationFromConfig extracts the generation settings from cfg.
func GenerationFromConfig(cfg config.LLMConfig) GenerationConfig {
	return GenerationConfig{
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		CandidateCount:  max(cfg.CandidateCount, 1),
	}
}

// New builds the Generator selected by cfg.Provider, wrapped with retries
// and a circuit breaker.
func New(cfg config.LLMConfig) (Generator, error) {
	p := cfg.ActiveProvider()
	if p.Key == "" {
		return nil, eris.Errorf("llm: api key for provider %q is not configured", cfg.Provider)
	}
	modelName := cfg.ActiveModel()
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	var gen Generator
	switch cfg.Provider {
	case config.ProviderGemini:
		gen = NewGemini(newGeminiClient(p, timeout), modelName)
	case config.ProviderAnthropic:
		gen = NewAnthropic(newAnthropicClient(p, timeout), modelName)
	case config.ProviderOpenAI:
		gen = NewOpenAI(newOpenAIClient(p, timeout), modelName)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}

	retry := resilience.NewRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs)
	breaker := resilience.NewCircuitConfig(cfg.Circuit.FailureThreshold, cfg.Circuit.ResetTimeoutSecs)
	return NewResilient(gen, retry, breaker), nil
}
