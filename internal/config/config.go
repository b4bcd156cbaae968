// Package config provides configuration loading and validation for the server, CLI and worker.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/llm"
)

// Config is the application configuration. Values come from defaults, then an optional
// JSON file, then environment variables.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	MaxUploadMB int    `json:"max_upload_mb,omitempty"`
	HistoryDir  string `json:"history_dir,omitempty"` // Directory for file-backed chat histories
	DatabaseURL string `json:"database_url,omitempty"`

	// Chat
	LLMProvider         string  `json:"llm_provider,omitempty"`
	Model               string  `json:"model,omitempty"`
	Temperature         float64 `json:"temperature,omitempty"`
	MaxTokens           int     `json:"max_tokens,omitempty"`
	TokenBudget         int     `json:"token_budget,omitempty"`
	DefaultPersona      string  `json:"default_persona,omitempty"`
	CustomSystemMessage string  `json:"custom_system_message,omitempty"`

	// Extraction
	PDFBackend string `json:"pdf_backend,omitempty"` // "native" or "pdftotext"

	// Object storage (S3 or any S3-compatible service such as R2)
	S3Endpoint string `json:"s3_endpoint,omitempty"`
	S3Region   string `json:"s3_region,omitempty"`

	// Worker
	RabbitMQURL string `json:"rabbitmq_url,omitempty"`
	Workers     int    `json:"workers,omitempty"`

	// Secrets are only read from the environment.
	GroqAPIKey        string `json:"-"`
	GeminiAPIKey      string `json:"-"`
	S3AccessKeyID     string `json:"-"`
	S3SecretAccessKey string `json:"-"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                8080,
		MaxUploadMB:         10,
		HistoryDir:          "chat_histories",
		LLMProvider:         string(llm.ProviderGroq),
		Temperature:         llm.DefaultTemperature,
		MaxTokens:           llm.DefaultMaxTokens,
		TokenBudget:         chat.DefaultTokenBudget,
		DefaultPersona:      chat.PersonaHelpful,
		CustomSystemMessage: chat.DefaultCustomSystemMessage,
		PDFBackend:          ingestion.PDFBackendNative,
		S3Region:            "auto",
		Workers:             3,
	}
}

// Load builds the configuration: defaults, merged with the JSON file at path (if any),
// overridden by the environment, then validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %v", key, err)
			}
			*dst = n
		}
		return nil
	}

	setString("GROQ_API_KEY", &c.GroqAPIKey)
	setString("GEMINI_API_KEY", &c.GeminiAPIKey)
	setString("LLM_PROVIDER", &c.LLMProvider)
	setString("LLM_MODEL", &c.Model)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("HISTORY_DIR", &c.HistoryDir)
	setString("PDF_BACKEND", &c.PDFBackend)
	setString("S3_ENDPOINT", &c.S3Endpoint)
	setString("S3_REGION", &c.S3Region)
	setString("S3_ACCESS_KEY_ID", &c.S3AccessKeyID)
	setString("S3_SECRET_ACCESS_KEY", &c.S3SecretAccessKey)
	setString("RABBITMQ_URL", &c.RabbitMQURL)

	if err := setInt("PORT", &c.Port); err != nil {
		return err
	}
	if err := setInt("WORKERS", &c.Workers); err != nil {
		return err
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Secrets are not required here; each command checks the ones it needs.
func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.LLMProvider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("config error: 'max_upload_mb' must be at least 1")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("config error: 'max_tokens' must be positive")
	}
	if c.TokenBudget < 1 {
		return fmt.Errorf("config error: 'token_budget' must be positive")
	}
	if _, ok := chat.SystemMessage(c.DefaultPersona, c.CustomSystemMessage); !ok {
		return fmt.Errorf("config error: unknown default persona %q", c.DefaultPersona)
	}
	if c.PDFBackend != ingestion.PDFBackendNative && c.PDFBackend != ingestion.PDFBackendPDFToText {
		return fmt.Errorf("config error: 'pdf_backend' must be %q or %q", ingestion.PDFBackendNative, ingestion.PDFBackendPDFToText)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config error: 'workers' must be at least 1")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	mergeInt := func(dst *int, def int) {
		if *dst == 0 {
			*dst = def
		}
	}

	mergeString(&result.HistoryDir, defaults.HistoryDir)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.LLMProvider, defaults.LLMProvider)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.DefaultPersona, defaults.DefaultPersona)
	mergeString(&result.CustomSystemMessage, defaults.CustomSystemMessage)
	mergeString(&result.PDFBackend, defaults.PDFBackend)
	mergeString(&result.S3Endpoint, defaults.S3Endpoint)
	mergeString(&result.S3Region, defaults.S3Region)
	mergeString(&result.RabbitMQURL, defaults.RabbitMQURL)

	mergeInt(&result.Port, defaults.Port)
	mergeInt(&result.MaxUploadMB, defaults.MaxUploadMB)
	mergeInt(&result.MaxTokens, defaults.MaxTokens)
	mergeInt(&result.TokenBudget, defaults.TokenBudget)
	mergeInt(&result.Workers, defaults.Workers)

	// A zero temperature is a legitimate setting but cannot be told apart from unset.
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}

	return result
}

// Provider returns the configured completion provider.
func (c *Config) Provider() llm.Provider {
	p, err := llm.ParseProvider(c.LLMProvider)
	if err != nil {
		return llm.ProviderGroq
	}
	return p
}

// LLMConfig returns the provider configuration with its API key.
func (c *Config) LLMConfig() llm.Config {
	p := c.Provider()
	key := c.GroqAPIKey
	if p == llm.ProviderGemini {
		key = c.GeminiAPIKey
	}
	return llm.Config{Provider: p, APIKey: key}
}

// ChatConfig returns the per-session chat settings.
func (c *Config) ChatConfig() chat.Config {
	opts := llm.DefaultOptions(c.Provider())
	if c.Model != "" {
		opts.Model = c.Model
	}
	opts.Temperature = c.Temperature
	opts.MaxTokens = c.MaxTokens

	return chat.Config{
		Options:             opts,
		TokenBudget:         c.TokenBudget,
		CustomSystemMessage: c.CustomSystemMessage,
		DefaultPersona:      c.DefaultPersona,
	}
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
