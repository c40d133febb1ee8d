package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type Config struct {
	Port     string
	LogLevel string

	// Completion provider
	LLMProvider string
	LLMTimeout  time.Duration

	// Gemini
	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// OpenRouter
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	// Limits
	MaxUploadBytes   int64
	MaxDownloadBytes int64
	MaxPromptChars   int
	DownloadTimeout  time.Duration
}

// Secrets is the optional YAML file named by SECRETS_FILE. Values set in the
// environment take precedence over the file.
type Secrets struct {
	GoogleAPIKey     string `yaml:"google_api_key"`
	OpenRouterAPIKey string `yaml:"openrouter_api_key"`
}

func Load() (*Config, error) {
	secrets, err := loadSecrets(os.Getenv("SECRETS_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		GoogleAPIKey:      getEnv("GOOGLE_API_KEY", secrets.GoogleAPIKey),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", secrets.OpenRouterAPIKey),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		MaxUploadBytes:    getEnvInt64("MAX_UPLOAD_BYTES", 25<<20),
		MaxDownloadBytes:  getEnvInt64("MAX_DOWNLOAD_BYTES", 25<<20),
		MaxPromptChars:    int(getEnvInt64("MAX_PROMPT_CHARS", 400000)),
		DownloadTimeout:   getEnvDuration("DOWNLOAD_TIMEOUT", 60*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the credential for the selected provider is present.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required")
		}
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (want %q or %q)", c.LLMProvider, ProviderGemini, ProviderOpenRouter)
	}

	if c.MaxUploadBytes <= 0 || c.MaxDownloadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES and MAX_DOWNLOAD_BYTES must be positive")
	}
	if c.MaxPromptChars < 0 {
		return fmt.Errorf("MAX_PROMPT_CHARS must not be negative")
	}

	return nil
}

// Model returns the model identifier of the selected provider.
func (c *Config) Model() string {
	if c.LLMProvider == ProviderOpenRouter {
		return c.OpenRouterModel
	}
	return c.GeminiModel
}

func loadSecrets(path string) (Secrets, error) {
	var s Secrets
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read secrets file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse secrets file: %w", err)
	}

	return s, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
