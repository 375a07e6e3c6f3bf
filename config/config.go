// Package config loads the commission service configuration from the
// environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/currency"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
	MetricsNamespace   string
	ShutdownTimeout    time.Duration

	CommissionRate     decimal.Decimal
	CommissionMinimum  decimal.Decimal
	CommissionCurrency string
	CommissionLocale   string
	RulesFile          string
	RulesReload        time.Duration // 0 disables hot reload
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	def := commission.DefaultRule()
	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		LogLevel:           valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat:          valueOrDefault(k.String("LOG_FORMAT"), "json"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), "commission"),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
		CommissionCurrency: strings.ToUpper(valueOrDefault(k.String("COMMISSION_CURRENCY"), currency.DefaultCode)),
		CommissionLocale:   valueOrDefault(k.String("COMMISSION_LOCALE"), currency.DefaultLocale),
		RulesFile:          strings.TrimSpace(k.String("COMMISSION_RULES_FILE")),
		RulesReload:        parseDuration(k.String("COMMISSION_RULES_RELOAD"), "0s"),
	}

	var err error
	if cfg.CommissionRate, err = parseDecimal("COMMISSION_RATE", k.String("COMMISSION_RATE"), def.Rate()); err != nil {
		return nil, err
	}
	if cfg.CommissionMinimum, err = parseDecimal("COMMISSION_MINIMUM", k.String("COMMISSION_MINIMUM"), def.Minimum()); err != nil {
		return nil, err
	}
	if _, err := cfg.DefaultRule(); err != nil {
		return nil, fmt.Errorf("COMMISSION_RATE/COMMISSION_MINIMUM: %w", err)
	}
	if _, err := currency.NewFormatter(cfg.CommissionCurrency, cfg.CommissionLocale); err != nil {
		return nil, fmt.Errorf("COMMISSION_CURRENCY/COMMISSION_LOCALE: %w", err)
	}

	return cfg, nil
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
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

// DefaultRule is the rule configured by COMMISSION_RATE and COMMISSION_MINIMUM.
func (c *Config) DefaultRule() (commission.Rule, error) {
	return commission.NewRule(c.CommissionRate, c.CommissionMinimum)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
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

func parseDecimal(key, value string, fallback decimal.Decimal) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
