package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	LLM         LLMConfig      `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // Job store backend: "memory" or "badger"
	Badger BadgerConfig `toml:"badger"`
	// Filesystem directories for raw uploads and generated output.
	Uploads string `toml:"uploads"`
	Reports string `toml:"reports"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// PipelineConfig contains configuration for analysis job execution
type PipelineConfig struct {
	StageTimeout     string `toml:"stage_timeout"`      // Max duration for any single pipeline stage (default: "2m")
	JobTTL           string `toml:"job_ttl"`            // Terminal jobs older than this are evicted (default: "24h")
	EvictionSchedule string `toml:"eviction_schedule"`  // Cron schedule for job eviction (default: hourly)
	AllowSchemaDrift bool   `toml:"allow_schema_drift"` // Merge files with diverging column sets instead of failing
	PreviewRows      int    `toml:"preview_rows"`       // Rows returned by the preview endpoint (default: 10)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey    string `toml:"api_key"`    // Google Gemini API key
	Model     string `toml:"model"`      // Model for insight generation (default: "gemini-2.5-flash")
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens in response (default: 512)
	Timeout   string `toml:"timeout"`    // Operation timeout as duration string (default: "60s")
	RateLimit string `toml:"rate_limit"` // Minimum interval between calls (default: "4s" for 15 RPM)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`    // Anthropic API key
	Model     string `toml:"model"`      // Model for insight generation (default: "claude-haiku-3-5-20241022")
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens in response (default: 512)
	Timeout   string `toml:"timeout"`    // Operation timeout as duration string (default: "60s")
	RateLimit string `toml:"rate_limit"` // Minimum interval between calls (default: "1s")
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for insight providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in insight.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "memory",
			Badger: BadgerConfig{
				Path: "./data/jobs",
			},
			Uploads: "./data/uploads",
			Reports: "./data/reports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Pipeline: PipelineConfig{
			StageTimeout:     "2m",
			JobTTL:           "24h",
			EvictionSchedule: "0 0 * * * *", // Hourly
			AllowSchemaDrift: false,
			PreviewRows:      10,
		},
		Gemini: GeminiConfig{
			APIKey:    "",
			Model:     "gemini-2.5-flash",
			MaxTokens: 512,
			Timeout:   "60s",
			RateLimit: "4s", // Free tier is 15 RPM
		},
		Claude: ClaudeConfig{
			APIKey:    "",
			Model:     "claude-haiku-3-5-20241022",
			MaxTokens: 512,
			Timeout:   "60s",
			RateLimit: "1s",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI flags.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("INSIGHT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("INSIGHT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("INSIGHT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if dir := os.Getenv("INSIGHT_UPLOADS_DIR"); dir != "" {
		config.Storage.Uploads = dir
	}
	if dir := os.Getenv("INSIGHT_REPORTS_DIR"); dir != "" {
		config.Storage.Reports = dir
	}
	if st := os.Getenv("INSIGHT_STORAGE_TYPE"); st != "" {
		config.Storage.Type = st
	}

	if level := os.Getenv("INSIGHT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// API keys follow the providers' conventional variable names first
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("INSIGHT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// StageTimeout returns the parsed pipeline stage timeout with fallback
func (c *Config) StageTimeout() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.StageTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// JobTTL returns the parsed terminal-job retention duration with fallback
func (c *Config) JobTTL() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.JobTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
