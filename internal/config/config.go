// Package config defines the service configuration, its defaults and the
// file and environment sources it is read from.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Registry backends.
const (
	RegistryMongo  = "mongo"
	RegistryMemory = "memory"
)

// Config holds runtime parameters for the service.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	// Registry selects the model registry backend: mongo or memory.
	Registry string `json:"registry" yaml:"registry" toml:"registry" env:"REGISTRY"`
	// SeedPath optionally lists models to load into the memory registry.
	SeedPath string `json:"seed_path" yaml:"seed_path" toml:"seed_path" env:"SEED_PATH"`

	Mongo MongoConfig `json:"mongo" yaml:"mongo" toml:"mongo" envPrefix:"MONGO_"`

	SettingsPath string `json:"settings_path" yaml:"settings_path" toml:"settings_path" env:"SETTINGS_PATH"`

	MaxModels         int      `json:"max_models" yaml:"max_models" toml:"max_models" env:"MAX_MODELS"`
	FanoutConcurrency int      `json:"fanout_concurrency" yaml:"fanout_concurrency" toml:"fanout_concurrency" env:"FANOUT_CONCURRENCY"`
	MaxPromptChars    int      `json:"max_prompt_chars" yaml:"max_prompt_chars" toml:"max_prompt_chars" env:"MAX_PROMPT_CHARS"`
	MaxBodyBytes      int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	RequestTimeout    Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout" env:"REQUEST_TIMEOUT"`

	Providers ProvidersConfig `json:"providers" yaml:"providers" toml:"providers"`
	CORS      CORSConfig      `json:"cors" yaml:"cors" toml:"cors" envPrefix:"CORS_"`
}

// MongoConfig locates the MongoDB collections.
type MongoConfig struct {
	URI               string   `json:"uri" yaml:"uri" toml:"uri" env:"URI"`
	Database          string   `json:"database" yaml:"database" toml:"database" env:"DATABASE"`
	ModelsCollection  string   `json:"models_collection" yaml:"models_collection" toml:"models_collection" env:"MODELS_COLLECTION"`
	ResultsCollection string   `json:"results_collection" yaml:"results_collection" toml:"results_collection" env:"RESULTS_COLLECTION"`
	OpTimeout         Duration `json:"op_timeout" yaml:"op_timeout" toml:"op_timeout" env:"OP_TIMEOUT"`
}

// ProvidersConfig overrides upstream endpoints and provider tunables.
type ProvidersConfig struct {
	OpenAI    EndpointConfig  `json:"openai" yaml:"openai" toml:"openai" envPrefix:"OPENAI_"`
	Gemini    GeminiConfig    `json:"gemini" yaml:"gemini" toml:"gemini" envPrefix:"GEMINI_"`
	DeepSeek  EndpointConfig  `json:"deepseek" yaml:"deepseek" toml:"deepseek" envPrefix:"DEEPSEEK_"`
	Anthropic AnthropicConfig `json:"anthropic" yaml:"anthropic" toml:"anthropic" envPrefix:"ANTHROPIC_"`
	Grok      EndpointConfig  `json:"grok" yaml:"grok" toml:"grok" envPrefix:"GROK_"`
}

// EndpointConfig carries a base URL override. Empty means the vendor default.
type EndpointConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url" env:"BASE_URL"`
}

type GeminiConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url" env:"BASE_URL"`
	// FallbackAPIKey is used for Gemini models stored without a key.
	FallbackAPIKey string `json:"fallback_api_key" yaml:"fallback_api_key" toml:"fallback_api_key" env:"API_KEY"`
}

type AnthropicConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url" toml:"base_url" env:"BASE_URL"`
	MaxTokens int64  `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens" env:"MAX_TOKENS"`
}

// CORSConfig is opt-in; nothing is added to responses unless Enabled.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled" env:"ENABLED"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins" env:"ORIGINS" envSeparator:","`
	Methods []string `json:"methods" yaml:"methods" toml:"methods" env:"METHODS" envSeparator:","`
	Headers []string `json:"headers" yaml:"headers" toml:"headers" env:"HEADERS" envSeparator:","`
}

// Defaults returns the configuration used when no source sets a key.
func Defaults() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Registry: RegistryMongo,
		Mongo: MongoConfig{
			Database:          "Majin",
			ModelsCollection:  "models",
			ResultsCollection: "results",
			OpTimeout:         Duration(10 * time.Second),
		},
		SettingsPath:      "~/.majin/settings.db",
		MaxModels:         5,
		FanoutConcurrency: 5,
		MaxPromptChars:    20000,
		MaxBodyBytes:      1 << 20,
		RequestTimeout:    Duration(120 * time.Second),
		Providers: ProvidersConfig{
			Anthropic: AnthropicConfig{MaxTokens: 1024},
		},
		CORS: CORSConfig{
			Methods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			Headers: []string{"Content-Type", "X-Log-Level", "X-Request-Id"},
		},
	}
}

// Validate reports the first invalid or missing key.
func (c Config) Validate() error {
	switch c.Registry {
	case RegistryMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return fmt.Errorf("mongo.uri (MAJIN_MONGO_URI) is required for the mongo registry")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo.database must not be empty")
		}
	case RegistryMemory:
	default:
		return fmt.Errorf("unknown registry %q (want mongo or memory)", c.Registry)
	}
	if c.MaxModels <= 0 {
		return fmt.Errorf("max_models must be positive, got %d", c.MaxModels)
	}
	if c.FanoutConcurrency < 0 {
		return fmt.Errorf("fanout_concurrency must not be negative, got %d", c.FanoutConcurrency)
	}
	if c.MaxPromptChars <= 0 {
		return fmt.Errorf("max_prompt_chars must be positive, got %d", c.MaxPromptChars)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// Duration is a time.Duration read from strings such as "10s". A bare integer
// is taken as seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}
