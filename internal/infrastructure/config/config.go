// Package config loads the service configuration from pulse.yaml with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "pulse.yaml"

// Config is the full service configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`
	AI    AIConfig    `yaml:"ai"`
	Agent AgentConfig `yaml:"agent"`
}

// StoreConfig points at the project-management document store.
type StoreConfig struct {
	URI string `yaml:"uri"`
}

// AIConfig stores provider defaults outside domain policy.
type AIConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	MaxAttempts    int    `yaml:"max_attempts"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AgentConfig tunes the conversation loop.
type AgentConfig struct {
	MaxSteps int `yaml:"max_steps"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider:       "gemini",
			MaxAttempts:    2,
			TimeoutSeconds: 120,
		},
		Agent: AgentConfig{MaxSteps: 5},
	}
}

// Load reads the config file at path (pulse.yaml when empty) and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if uri := os.Getenv("PULSE_STORE_URI"); uri != "" {
		cfg.Store.URI = uri
	}
	if provider := os.Getenv("PULSE_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("PULSE_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}

	if cfg.AI.MaxAttempts <= 0 {
		cfg.AI.MaxAttempts = 2
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 120
	}
	if cfg.Agent.MaxSteps <= 0 {
		cfg.Agent.MaxSteps = 5
	}
	return cfg, nil
}

// Save writes the configuration to path (pulse.yaml when empty).
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if path == "" {
		path = defaultConfigFile
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// AITimeout returns the configured LLM call timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}
