package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TPMSCRAPER_CONFIG is set
//  3. env (prefix TPMSCRAPER_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TPMSCRAPER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TPMSCRAPER_OUTPUT_DIR, TPMSCRAPER_ORGANISM, ...
	// Map env keys like TPMSCRAPER_OUTPUT_DIR -> output_dir (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TPMSCRAPER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tpmscraper_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ExpressionThreshold < 0 {
		return fmt.Errorf("%w: expression_threshold must not be negative", ErrInvalidConfig)
	}
	if c.SignificanceThreshold <= 0 || c.SignificanceThreshold > 1 {
		return fmt.Errorf("%w: significance_threshold must be in (0, 1]", ErrInvalidConfig)
	}
	if c.Organism == "" {
		return fmt.Errorf("%w: organism must not be empty", ErrInvalidConfig)
	}
	if c.EnrichmentURL == "" {
		return fmt.Errorf("%w: enrichment_url must not be empty", ErrInvalidConfig)
	}
	if c.WormseqDir == "" || c.CengenDir == "" || c.ReferenceDir == "" {
		return fmt.Errorf("%w: input directories must not be empty", ErrInvalidConfig)
	}
	if c.RequestTimeoutSec <= 0 {
		return fmt.Errorf("%w: request_timeout_sec must be positive", ErrInvalidConfig)
	}
	return nil
}
