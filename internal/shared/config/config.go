// Package config loads the RoutingConfig the core is constructed from,
// layering environment variables over an optional config file using
// spf13/viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TierConfig toggles a family of model providers on or off.
type TierConfig struct {
	LocalEnabled   bool `mapstructure:"local_enabled"`
	HostedEnabled  bool `mapstructure:"hosted_enabled"`
	PremiumEnabled bool `mapstructure:"premium_enabled"`
}

// ValidationConfig controls the validation pipeline.
type ValidationConfig struct {
	EarlyExit bool `mapstructure:"early_exit"`
}

// ExecutionConfig controls scheduling behaviour.
type ExecutionConfig struct {
	EnableConflictDetection bool `mapstructure:"enable_conflict_detection"`
}

// RoutingConfig is the external configuration surface the core is built
// from (spec.md §6). It is constructed once at startup and injected;
// nothing in the core mutates it after construction.
type RoutingConfig struct {
	Tiers         TierConfig        `mapstructure:"tiers"`
	APIKeys       map[string]string `mapstructure:"api_keys"`
	Timeout       time.Duration     `mapstructure:"timeout"`
	MaxConcurrent int               `mapstructure:"max_concurrent"`
	Validation    ValidationConfig  `mapstructure:"validation"`
	Execution     ExecutionConfig   `mapstructure:"execution"`
}

// GetAPIKey returns the configured API key for provider, if any.
func (c *RoutingConfig) GetAPIKey(provider string) (string, bool) {
	if c == nil || c.APIKeys == nil {
		return "", false
	}
	key, ok := c.APIKeys[provider]
	return key, ok && key != ""
}

// Default returns a RoutingConfig with conservative defaults: only the
// local tier enabled, conflict detection on, no early exit, modest
// concurrency.
func Default() RoutingConfig {
	return RoutingConfig{
		Tiers:         TierConfig{LocalEnabled: true},
		APIKeys:       map[string]string{},
		Timeout:       60 * time.Second,
		MaxConcurrent: 4,
		Validation:    ValidationConfig{EarlyExit: false},
		Execution:     ExecutionConfig{EnableConflictDetection: true},
	}
}

// Load reads a RoutingConfig from an optional file path (yaml/json/toml, by
// extension) layered under environment variables prefixed AGENTCORE_. A
// missing file is not an error: defaults plus environment overrides are
// used.
func Load(path string) (RoutingConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("AGENTCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tiers.local_enabled", cfg.Tiers.LocalEnabled)
	v.SetDefault("tiers.hosted_enabled", cfg.Tiers.HostedEnabled)
	v.SetDefault("tiers.premium_enabled", cfg.Tiers.PremiumEnabled)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("max_concurrent", cfg.MaxConcurrent)
	v.SetDefault("validation.early_exit", cfg.Validation.EarlyExit)
	v.SetDefault("execution.enable_conflict_detection", cfg.Execution.EnableConflictDetection)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("load routing config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal routing config: %w", err)
	}
	return cfg, nil
}
