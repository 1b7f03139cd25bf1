// Package config provides configuration loading with layered sources:
// defaults in code, an optional YAML file, then environment variables.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment identifies the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config holds all configuration values.
type Config struct {
	Environment Environment `yaml:"environment" validate:"required,oneof=development staging production"`
	LogLevel    string      `yaml:"log_level" validate:"required,oneof=debug info warn error"`

	Server    Server    `yaml:"server"`
	LLM       LLM       `yaml:"llm"`
	Cache     Cache     `yaml:"cache"`
	Discovery Discovery `yaml:"discovery"`
	Funding   Funding   `yaml:"funding"`
}

// Server configures the HTTP listener.
type Server struct {
	Port            int           `yaml:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LLM configures the external text-generation capability.
// An empty APIKey leaves the service in template-only mode.
type LLM struct {
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout" validate:"min=0"`
	Temperature float64       `yaml:"temperature" validate:"min=0,max=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"min=1"`
}

// Cache configures the in-memory stores.
type Cache struct {
	MaxEntries    int           `yaml:"max_entries" validate:"min=1"`
	ProposalTTL   time.Duration `yaml:"proposal_ttl"`
	EventTTL      time.Duration `yaml:"event_ttl"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

// Feed is a single event listing source.
type Feed struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// Discovery configures event listing fetches.
type Discovery struct {
	Feeds        []Feed        `yaml:"feeds" validate:"dive"`
	MaxRetries   int           `yaml:"max_retries" validate:"min=1"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// Funding configures the application tracker.
type Funding struct {
	TrackerPath string `yaml:"tracker_path" validate:"required"`
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Default returns a configuration with sensible defaults so the application
// can run without any configuration file.
func Default() *Config {
	return &Config{
		Environment: Development,
		LogLevel:    "info",
		Server: Server{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLM{
			Model:       "gpt-4o-mini",
			Timeout:     30 * time.Second,
			Temperature: 0.7,
			MaxTokens:   1200,
		},
		Cache: Cache{
			MaxEntries:    500,
			ProposalTTL:   time.Hour,
			EventTTL:      6 * time.Hour,
			PurgeInterval: 10 * time.Minute,
		},
		Discovery: Discovery{
			Feeds:        nil,
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
			FetchTimeout: 30 * time.Second,
		},
		Funding: Funding{
			TrackerPath: "data/applications.json",
		},
	}
}
