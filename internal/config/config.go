package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/site-analyzer/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Crawl    CrawlConfig    `yaml:"crawl" mapstructure:"crawl"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LLMConfig selects the model provider and its generation settings.
type LLMConfig struct {
	Provider        string         `yaml:"provider" mapstructure:"provider"`
	Model           string         `yaml:"model" mapstructure:"model"`
	Temperature     float64        `yaml:"temperature" mapstructure:"temperature"`
	MaxOutputTokens int            `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	CandidateCount  int            `yaml:"candidate_count" mapstructure:"candidate_count"`
	TimeoutSecs     int            `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retry           RetryConfig    `yaml:"retry" mapstructure:"retry"`
	Circuit         CircuitConfig  `yaml:"circuit" mapstructure:"circuit"`
	Gemini          ProviderConfig `yaml:"gemini" mapstructure:"gemini"`
	Anthropic       ProviderConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI          ProviderConfig `yaml:"openai" mapstructure:"openai"`
}

// ProviderConfig holds credentials for one model provider.
type ProviderConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// RetryConfig configures retries of model calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the provider circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// CrawlConfig configures page fetching.
type CrawlConfig struct {
	TimeoutSecs   int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxLinks      int           `yaml:"max_links" mapstructure:"max_links"`
	MaxImages     int           `yaml:"max_images" mapstructure:"max_images"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	Browser       BrowserConfig `yaml:"browser" mapstructure:"browser"`
}

// BrowserConfig configures the headless browser fallback.
type BrowserConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	ControlURL  string `yaml:"control_url" mapstructure:"control_url"`
	WaitSecs    int    `yaml:"wait_secs" mapstructure:"wait_secs"`
	MinTextSize int    `yaml:"min_text_size" mapstructure:"min_text_size"`
}

// AnalysisConfig configures content selection and response handling.
type AnalysisConfig struct {
	ChunkSize      int           `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap   int           `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	MaxTotalChunks int           `yaml:"max_total_chunks" mapstructure:"max_total_chunks"`
	Schema         string        `yaml:"schema" mapstructure:"schema"`
	Fallback       string        `yaml:"fallback" mapstructure:"fallback"`
	Facets         []model.Facet `yaml:"facets" mapstructure:"facets"`
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	CORSOrigins      []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimitPerHour int      `yaml:"rate_limit_per_hour" mapstructure:"rate_limit_per_hour"`
	MaxRequestBytes  int64    `yaml:"max_request_bytes" mapstructure:"max_request_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "website_analyzer.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_per_hour", 100)
	v.SetDefault("server.max_request_bytes", 1<<20)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_output_tokens", 2000)
	v.SetDefault("llm.candidate_count", 1)
	v.SetDefault("llm.timeout_secs", 90)
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_backoff_ms", 500)
	v.SetDefault("llm.retry.max_backoff_ms", 20000)
	v.SetDefault("llm.circuit.failure_threshold", 5)
	v.SetDefault("llm.circuit.reset_timeout_secs", 30)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.gemini.key", "")
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.gemini.model", "gemini-1.5-flash")
	v.SetDefault("llm.anthropic.key", "")
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.openai.key", "")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("crawl.browser.control_url", "")
	v.SetDefault("crawl.timeout_secs", 30)
	v.SetDefault("crawl.user_agent", "AI Website Analyzer Bot/1.0")
	v.SetDefault("crawl.max_links", 20)
	v.SetDefault("crawl.max_images", 10)
	v.SetDefault("crawl.max_body_bytes", 5<<20)
	v.SetDefault("crawl.respect_robots", false)
	v.SetDefault("crawl.browser.enabled", false)
	v.SetDefault("crawl.browser.wait_secs", 3)
	v.SetDefault("crawl.browser.min_text_size", 200)
	v.SetDefault("analysis.chunk_size", 500)
	v.SetDefault("analysis.chunk_overlap", 100)
	v.SetDefault("analysis.max_total_chunks", 8)
	v.SetDefault("analysis.schema", string(model.SchemaBasic))
	v.SetDefault("analysis.fallback", string(model.FallbackDegraded))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ActiveProvider returns the credentials block of the selected provider.
func (c LLMConfig) ActiveProvider() ProviderConfig {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic
	case ProviderOpenAI:
		return c.OpenAI
	default:
		return c.Gemini
	}
}

// ActiveModel returns the model to call: llm.model when set, otherwise the
// selected provider's default.
func (c LLMConfig) ActiveModel() string {
	if c.Model != "" {
		return c.Model
	}
	return c.ActiveProvider().Model
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config: invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks the settings needed to analyze pages. It reports all
// problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		add("store.driver %q must be sqlite or postgres", c.Store.Driver)
	}
	if c.Store.DatabaseURL == "" {
		add("store.database_url is required")
	}

	switch c.LLM.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
		if c.LLM.ActiveProvider().Key == "" {
			add("llm.%s.key is required for provider %s", c.LLM.Provider, c.LLM.Provider)
		}
	default:
		add("llm.provider %q must be one of gemini, anthropic, openai", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		add("llm.temperature %.2f must be between 0 and 1", c.LLM.Temperature)
	}
	if c.LLM.MaxOutputTokens < 100 {
		add("llm.max_output_tokens %d must be at least 100", c.LLM.MaxOutputTokens)
	}
	if c.LLM.CandidateCount < 1 {
		add("llm.candidate_count %d must be at least 1", c.LLM.CandidateCount)
	}

	a := c.Analysis
	if a.ChunkSize <= 0 {
		add("analysis.chunk_size %d must be positive", a.ChunkSize)
	}
	if a.ChunkOverlap < 0 || (a.ChunkSize > 0 && a.ChunkOverlap >= a.ChunkSize) {
		add("analysis.chunk_overlap %d must be in [0, chunk_size)", a.ChunkOverlap)
	}
	if a.MaxTotalChunks < 1 {
		add("analysis.max_total_chunks %d must be at least 1", a.MaxTotalChunks)
	}
	if !model.SchemaVariant(a.Schema).Valid() {
		add("analysis.schema %q must be basic or extended", a.Schema)
	}
	if !model.FallbackMode(a.Fallback).Valid() {
		add("analysis.fallback %q must be strict or degraded", a.Fallback)
	}
	for i, f := range a.Facets {
		if len(f.Query.Tokens()) == 0 {
			add("analysis.facets[%d] has an empty query", i)
		}
		if f.Limit < 1 {
			add("analysis.facets[%d] limit %d must be at least 1", i, f.Limit)
		}
	}

	if c.Crawl.TimeoutSecs <= 0 {
		add("crawl.timeout_secs %d must be positive", c.Crawl.TimeoutSecs)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port %d must be between 1 and 65535", c.Server.Port)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
