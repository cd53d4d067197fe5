package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/storefront-landing/pkg/config"
)

// Config holds all configuration for the storefront landing service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser         string        `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass         string        `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB           string        `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL          string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns           int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns           int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBQueryTimeout       time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"3s"`
	SlowQueryThresholdMs int           `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Shopify Admin API
	ShopifyShopDomain     string        `env:"SHOPIFY_SHOP_DOMAIN"`
	ShopifyAccessToken    string        `env:"SHOPIFY_ACCESS_TOKEN"`
	ShopifyAPIVersion     string        `env:"SHOPIFY_API_VERSION" envDefault:"2024-10"`
	ShopifyRequestTimeout time.Duration `env:"SHOPIFY_REQUEST_TIMEOUT" envDefault:"5s"`
	ShopifyAppProxySecret string        `env:"SHOPIFY_APP_PROXY_SECRET"`
	ShopifyMaxRPS         float64       `env:"SHOPIFY_MAX_RPS" envDefault:"4"`
	ShopifyBurst          int           `env:"SHOPIFY_BURST" envDefault:"8"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	cfg.ShopifyShopDomain = NormalizeShopDomain(cfg.ShopifyShopDomain)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.DBQueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive, got %s", c.DBQueryTimeout)
	}
	if c.ShopifyRequestTimeout <= 0 {
		return fmt.Errorf("SHOPIFY_REQUEST_TIMEOUT must be positive, got %s", c.ShopifyRequestTimeout)
	}
	if c.ShopifyMaxRPS < 0 {
		return fmt.Errorf("SHOPIFY_MAX_RPS must not be negative, got %g", c.ShopifyMaxRPS)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}

	if c.IsDevelopment() {
		return nil
	}

	// Outside development every request is proxied from a real shop.
	var errs []error
	if c.ShopifyShopDomain == "" {
		errs = append(errs, fmt.Errorf("SHOPIFY_SHOP_DOMAIN must be set in %q mode", c.Environment))
	}
	if c.ShopifyAccessToken == "" {
		errs = append(errs, fmt.Errorf("SHOPIFY_ACCESS_TOKEN must be set in %q mode", c.Environment))
	}
	if c.ShopifyAppProxySecret == "" {
		errs = append(errs, fmt.Errorf("SHOPIFY_APP_PROXY_SECRET must be set in %q mode", c.Environment))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// NormalizeShopDomain strips the scheme and trailing slashes so that
// "https://demo.myshopify.com/" becomes "demo.myshopify.com".
func NormalizeShopDomain(shop string) string {
	shop = strings.TrimSpace(shop)
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	return strings.TrimRight(shop, "/")
}
