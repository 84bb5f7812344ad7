package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("TELEGRAM_MODE", "webhook")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxWarns)
	assert.Equal(t, int64(1000), cfg.StartingCredits)
	assert.Equal(t, int64(10), cfg.DuelMinBet)
	assert.Equal(t, int64(10000), cfg.DuelMaxBet)
	assert.Equal(t, int64(10), cfg.DuelTaxPercent)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.NATSServers)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_IDS", "1, 2,bogus,3")
	t.Setenv("IMMUNE_IDS", "777000")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
	t.Setenv("MAX_WARNS", "5")
	t.Setenv("DUEL_TAX_PERCENT", "15")
	t.Setenv("CORS_ORIGINS", "https://map.example, https://www.map.example")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, cfg.AdminIDs)
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
	assert.Equal(t, 5, cfg.MaxWarns)
	assert.Equal(t, int64(15), cfg.DuelTaxPercent)
	assert.Equal(t, []string{"https://map.example", "https://www.map.example"}, cfg.CORSOrigins)

	assert.True(t, cfg.IsAdmin(2))
	assert.False(t, cfg.IsAdmin(4))
	assert.True(t, cfg.IsImmune(777000))
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing token", "TELEGRAM_TOKEN", ""},
		{"missing database", "DATABASE_URL", ""},
		{"unknown mode", "TELEGRAM_MODE", "carrier-pigeon"},
		{"webhook without secret", "TELEGRAM_WEBHOOK_SECRET", ""},
		{"inverted bet range", "DUEL_MAX_BET", "5"},
		{"tax too high", "DUEL_TAX_PERCENT", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_PollingNeedsNoSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_MODE", "polling")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "")

	_, err := load()
	assert.NoError(t, err)
}

func TestGet_UsesTestConfig(t *testing.T) {
	t.Cleanup(ResetConfig)
	SetTestConfig(NewTestConfig())

	cfg := Get()
	assert.Equal(t, "test", cfg.Environment)
	assert.True(t, cfg.IsAdmin(999999))
}
