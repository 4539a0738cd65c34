// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // job record retention window
}

type ProviderConfig struct {
	Name             string        `yaml:"name"` // veo | sora
	GeminiKey        string        `yaml:"gemini_key"`
	GeminiURL        string        `yaml:"gemini_url"`
	OpenAIKey        string        `yaml:"openai_key"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"`
	Model            string        `yaml:"model"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	MaxPollAttempts  int           `yaml:"max_poll_attempts"`
	DownloadTimeout  time.Duration `yaml:"download_timeout"`
	EstimatedSeconds int           `yaml:"estimated_seconds"` // advisory completion estimate
}

type WorkerConfig struct {
	Count int `yaml:"count"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Provider ProviderConfig `yaml:"provider"`
	Worker   WorkerConfig   `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	switch cfg.Provider.Name {
	case "veo":
		if cfg.Provider.GeminiKey == "" {
			return nil, errors.New("provider.gemini_key is required for veo")
		}
	case "sora":
		if cfg.Provider.OpenAIKey == "" {
			return nil, errors.New("provider.openai_key is required for sora")
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8003
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "veo"
	}
	if cfg.Provider.Model == "" {
		switch cfg.Provider.Name {
		case "sora":
			cfg.Provider.Model = "sora-2"
		default:
			cfg.Provider.Model = "veo-3.1-fast-generate-preview"
		}
	}
	if cfg.Provider.OpenAIBaseURL == "" {
		cfg.Provider.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.Provider.PollInterval <= 0 {
		cfg.Provider.PollInterval = 10 * time.Second
	}
	if cfg.Provider.MaxPollAttempts <= 0 {
		cfg.Provider.MaxPollAttempts = 60
	}
	if cfg.Provider.DownloadTimeout <= 0 {
		cfg.Provider.DownloadTimeout = 2 * time.Minute
	}
	if cfg.Provider.EstimatedSeconds <= 0 {
		cfg.Provider.EstimatedSeconds = 90
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 8
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
