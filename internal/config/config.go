// Package config loads resumeforge settings from an optional YAML file,
// a .env file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderAgent  = "agent"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Queue    QueueConfig    `yaml:"queue"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, agent, openai
	// APIKey is the key for Provider. After Load it holds the provider's own
	// key when one is set, else the api_key from the file.
	APIKey       string        `yaml:"api_key"`
	GoogleAPIKey string        `yaml:"google_api_key"`
	OpenAIAPIKey string        `yaml:"openai_api_key"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	BaseURL     string        `yaml:"base_url"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig describes a Cloudflare R2 bucket, or any S3 endpoint when
// Endpoint is set.
type StorageConfig struct {
	AccountID string `yaml:"account_id"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

type QueueConfig struct {
	URL      string `yaml:"url"`
	Queue    string `yaml:"queue"`
	Exchange string `yaml:"exchange"`
	Workers  int    `yaml:"workers"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   90 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 10 << 20,
		},
		LLM: LLMConfig{
			Provider:    ProviderGemini,
			Temperature: 0.1,
			Timeout:     60 * time.Second,
		},
		Queue: QueueConfig{
			Queue:    "analyses",
			Exchange: "analysis_updates",
			Workers:  3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path when it exists, then applies .env and
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg.applyEnvOverrides()
	cfg.LLM.Model = cfg.LLM.model()
	cfg.LLM.APIKey = cfg.LLM.key()

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	// LLM credentials pick a provider when LLM_PROVIDER is unset; the key
	// itself is chosen once the provider is final
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.GoogleAPIKey = key
		if c.LLM.Provider != ProviderAgent {
			c.LLM.Provider = ProviderGemini
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.GoogleAPIKey = key
		if c.LLM.Provider != ProviderAgent {
			c.LLM.Provider = ProviderGemini
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.OpenAIAPIKey = key
		c.LLM.Provider = ProviderOpenAI
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		c.LLM.BaseURL = base
	}

	if url := os.Getenv("DB_URL"); url != "" {
		c.Database.URL = url
	}

	if id := os.Getenv("R2_ACCCOUNT_ID"); id != "" {
		c.Storage.AccountID = id
	}
	if id := os.Getenv("R2_ACCOUNT_ID"); id != "" {
		c.Storage.AccountID = id
	}
	if bucket := os.Getenv("R2_BUCKET"); bucket != "" {
		c.Storage.Bucket = bucket
	}
	if key := os.Getenv("R2_ACCESS_KEY"); key != "" {
		c.Storage.AccessKey = key
	}
	if key := os.Getenv("R2_SECRET_KEY"); key != "" {
		c.Storage.SecretKey = key
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		c.Storage.Endpoint = endpoint
	}

	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		c.Queue.URL = url
	}
	if n, err := strconv.Atoi(os.Getenv("WORKERS")); err == nil && n > 0 {
		c.Queue.Workers = n
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// key returns the credential for the selected provider. A key meant for a
// different provider is never used.
func (l LLMConfig) key() string {
	switch l.Provider {
	case ProviderGemini, ProviderAgent:
		if l.GoogleAPIKey != "" {
			return l.GoogleAPIKey
		}
	case ProviderOpenAI:
		if l.OpenAIAPIKey != "" {
			return l.OpenAIAPIKey
		}
	}
	return l.APIKey
}

func (l LLMConfig) model() string {
	if l.Model != "" {
		return l.Model
	}
	switch l.Provider {
	case ProviderAgent:
		return "gemini-2.5-pro"
	case ProviderOpenAI:
		return "gpt-4o"
	default:
		return "gemini-2.5-flash"
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderAgent, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature %v out of range [0,2]", c.LLM.Temperature)
	}
	if c.Queue.Workers < 1 {
		return errors.New("queue workers must be at least 1")
	}
	if c.Storage.Bucket != "" && c.Storage.AccountID == "" && c.Storage.Endpoint == "" {
		return errors.New("storage bucket set without an R2 account id or endpoint")
	}
	return nil
}

// RequireLLM fails when no API key is configured for the selected provider.
func (c *Config) RequireLLM() error {
	if c.LLM.key() == "" {
		return fmt.Errorf("empty api key for llm provider %q in environment", c.LLM.Provider)
	}
	return nil
}

func (c *Config) DatabaseEnabled() bool { return c.Database.URL != "" }
func (c *Config) StorageEnabled() bool  { return c.Storage.Bucket != "" }
func (c *Config) QueueEnabled() bool    { return c.Queue.URL != "" }
