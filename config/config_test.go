package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS",
		"COMMISSION_RATE", "COMMISSION_MINIMUM", "COMMISSION_CURRENCY", "COMMISSION_LOCALE",
		"COMMISSION_RULES_FILE", "COMMISSION_RULES_RELOAD", "METRICS_NAMESPACE", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, "GBP", cfg.CommissionCurrency)
	assert.Equal(t, "en-GB", cfg.CommissionLocale)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Nil(t, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.RulesReload)
	assert.False(t, cfg.IsProduction())

	rule, err := cfg.DefaultRule()
	require.NoError(t, err)
	assert.True(t, rule.Equal(commission.DefaultRule()))
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://partners.example.com, ,https://admin.example.com")
	t.Setenv("COMMISSION_RATE", "0.2")
	t.Setenv("COMMISSION_MINIMUM", "25")
	t.Setenv("COMMISSION_CURRENCY", "eur")
	t.Setenv("COMMISSION_LOCALE", "de-DE")
	t.Setenv("SHUTDOWN_TIMEOUT", "bogus")
	t.Setenv("COMMISSION_RULES_FILE", " /etc/commission/rules.json ")
	t.Setenv("COMMISSION_RULES_RELOAD", "30s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.HTTPAddr())
	assert.Equal(t, []string{"https://partners.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "EUR", cfg.CommissionCurrency)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout, "bad durations fall back")
	assert.Equal(t, "/etc/commission/rules.json", cfg.RulesFile)
	assert.Equal(t, 30*time.Second, cfg.RulesReload)

	rule, err := cfg.DefaultRule()
	require.NoError(t, err)
	assert.True(t, rule.Equal(commission.MustRule("0.2", "25")))
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"COMMISSION_RATE":     "1.5",
		"COMMISSION_MINIMUM":  "fifty",
		"COMMISSION_CURRENCY": "XYZ1",
		"COMMISSION_LOCALE":   "ja-JP",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestMustLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	assert.Equal(t, ":9090", config.MustLoad().HTTPAddr())

	t.Setenv("COMMISSION_RATE", "2")
	assert.Panics(t, func() { config.MustLoad() })
}
