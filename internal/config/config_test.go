package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
	assert.Equal(t, "loyalty", cfg.Database.Name)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "lifetime", cfg.Tier.SpendWindow)
	assert.Equal(t, "0 3 * * *", cfg.Reassess.Schedule)
	assert.Equal(t, 30*time.Minute, cfg.Reassess.Timeout)
	assert.Equal(t, 4, cfg.Reassess.Workers)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"DB_HOST":              "db.internal",
		"DB_NAME":              "loyalty_test",
		"APP_ENVIRONMENT":      "production",
		"TIER_SPEND_WINDOW":    "yearly",
		"REASSESS_WORKERS":     "8",
		"REASSESS_TIMEOUT":     "5m",
		"DB_CONN_MAX_LIFETIME": "15m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "host=db.internal port=5432 user=postgres password=postgres dbname=loyalty_test sslmode=disable",
		cfg.Database.GetDatabaseURL())
	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "yearly", cfg.Tier.SpendWindow)
	assert.Equal(t, 8, cfg.Reassess.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Reassess.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown spend window": {"TIER_SPEND_WINDOW": "weekly"},
		"zero workers":         {"REASSESS_WORKERS": "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
		})
	}
}
