// Package llm provides chat completion clients for the supported hosted providers.
package llm

import "fmt"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGroq is Groq's OpenAI-compatible chat completions API
	ProviderGroq Provider = "groq"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Completion defaults.
const (
	DefaultGroqModel   = "llama-3.1-8b-instant"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 5000
)

// Options are the per-request generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Config selects and authenticates a provider.
type Config struct {
	Provider Provider
	APIKey   string
	// Endpoint overrides the provider's base URL; used for tests and proxies.
	Endpoint string
}

// DefaultOptions returns the default generation parameters for a provider.
func DefaultOptions(p Provider) Options {
	return Options{
		Model:       DefaultModel(p),
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// DefaultModel returns the default model name for a provider.
func DefaultModel(p Provider) string {
	if p == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultGroqModel
}

// ParseProvider validates a provider name. An empty name selects Groq.
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case "", ProviderGroq:
		return ProviderGroq, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q (expected %q or %q)", name, ProviderGroq, ProviderGemini)
	}
}

// APIKeyEnv returns the environment variable that holds the provider's API key.
func APIKeyEnv(p Provider) string {
	if p == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "GROQ_API_KEY"
}
