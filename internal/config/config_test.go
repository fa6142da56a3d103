package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
	assert.False(t, cfg.RenderMarkdown)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, 500, cfg.SessionCacheSize)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("RENDER_MARKDOWN", "true")
	t.Setenv("PORT", "9090")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "quill.db", cfg.Storage.DatabaseURL)
	assert.True(t, cfg.RenderMarkdown)
	assert.Equal(t, "9090", cfg.Port)
}

func TestPostgresFallbackDSN(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", DriverPostgres)
	v.Set("SITE_URL", "https://quill.example")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Contains(t, cfg.Storage.DatabaseURL, "dbname=quill")
}

func TestUnknownDriver(t *testing.T) {
	v := newViper()
	v.Set("STORAGE_DRIVER", "etcd")

	_, err := FromViper(v)
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestEmptySiteURL(t *testing.T) {
	v := newViper()
	v.Set("SITE_URL", "  ")

	_, err := FromViper(v)
	assert.Error(t, err)
}
