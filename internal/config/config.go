// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads types.Config from viper. It is called once at startup;
// the resulting value is immutable and passed to constructors explicitly.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g.
// RESEARCH_DIGEST_SEARCH_TIMEOUT for search.timeout.
const EnvPrefix = "RESEARCH_DIGEST"

// BindEnv enables environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// SetDefaults registers every key with its default so that env overrides
// reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("search.base_url", "http://export.arxiv.org/api/query")
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.user_agent", "research-digest/0.1 (+https://github.com/pdiddy/research-digest)")
	v.SetDefault("search.default_max_results", 3)

	v.SetDefault("model.provider", "anthropic")
	v.SetDefault("model.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.max_tokens", 2000)
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.timeout", 60*time.Second)

	v.SetDefault("summary.bullets", 5)

	v.SetDefault("render.mode", string(types.RenderTemplate))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 180*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "research-digest")
	v.SetDefault("tracing.otlp_endpoint", "")
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func Validate(cfg types.Config) error {
	var problems []string
	if cfg.Search.BaseURL == "" {
		problems = append(problems, "search.base_url is empty")
	}
	if cfg.Search.Timeout <= 0 {
		problems = append(problems, "search.timeout must be positive")
	}
	if cfg.Model.Timeout <= 0 {
		problems = append(problems, "model.timeout must be positive")
	}
	if cfg.Model.MaxTokens <= 0 {
		problems = append(problems, "model.max_tokens must be positive")
	}
	switch cfg.Render.Mode {
	case types.RenderTemplate, types.RenderModel:
	default:
		problems = append(problems, fmt.Sprintf("render.mode %q is not one of template, model", cfg.Render.Mode))
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not one of json, console", cfg.Log.Format))
	}
	if cfg.Server.Addr == "" {
		problems = append(problems, "server.addr is empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
