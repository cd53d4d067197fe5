package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Option adjusts how Load resolves variables.
type Option func(*env.Options)

// WithPrefix prepends prefix to every env tag, e.g. "STOREFRONT_".
func WithPrefix(prefix string) Option {
	return func(o *env.Options) { o.Prefix = prefix }
}

// WithEnvironment reads variables from vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) { o.Environment = vars }
}

// Load parses environment variables into the struct pointed to by cfg,
// using `env` and `envDefault` tags.
func Load(cfg any, opts ...Option) error {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}
	if err := env.ParseWithOptions(cfg, o); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
