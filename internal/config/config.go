package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	SessionJWTSecret   string
	CORSAllowedOrigins []string

	// VATRate is the fractional VAT applied to consumer prices (0.19 = 19%).
	VATRate  decimal.Decimal
	Currency string

	CatalogCacheTTL time.Duration
	CartTTL         time.Duration

	QuoteRateLimit string

	AutoMigrate bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		SessionJWTSecret:   k.String("SESSION_JWT_SECRET"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		VATRate:            parsePercent(k.String("VAT_RATE_PERCENT"), "19"),
		Currency:           valueOrDefault(k.String("CURRENCY_CODE"), "EUR"),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CartTTL:            parseDuration(k.String("CART_TTL"), "168h"),
		QuoteRateLimit:     valueOrDefault(k.String("QUOTE_RATE_LIMIT"), "60-M"),
		AutoMigrate:        parseBool(k.String("AUTO_MIGRATE")),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// parsePercent turns a percentage value ("19") into its fractional rate (0.19).
func parsePercent(value, fallback string) decimal.Decimal {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	pct, err := decimal.NewFromString(base)
	if err != nil {
		pct = decimal.RequireFromString(fallback)
	}
	return pct.Div(decimal.NewFromInt(100))
}
