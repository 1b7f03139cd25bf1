package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from layered sources, lowest to highest
// priority: defaults in code, the YAML file at path (skipped when path is
// empty or the file does not exist), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	loadEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path onto cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadEnvironment overlays environment variables on the configuration.
// This provides the highest priority configuration source.
func loadEnvironment(cfg *Config) {
	if val := os.Getenv("ENVIRONMENT"); val != "" {
		cfg.Environment = Environment(val)
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	// Server
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}

	// LLM
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		cfg.LLM.APIKey = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		cfg.LLM.BaseURL = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		cfg.LLM.Model = val
	}
	if val := os.Getenv("LLM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.LLM.Timeout = d
		}
	}

	// Cache
	if val := os.Getenv("CACHE_MAX_ENTRIES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Cache.MaxEntries = n
		}
	}
	if val := os.Getenv("CACHE_PROPOSAL_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.ProposalTTL = d
		}
	}

	// Funding
	if val := os.Getenv("TRACKER_PATH"); val != "" {
		cfg.Funding.TrackerPath = val
	}
}
