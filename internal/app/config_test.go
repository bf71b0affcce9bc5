package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.AppAddr)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, "./data", cfg.StorageDir)
	assert.Equal(t, 45*time.Second, cfg.AppRequestTimeout)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 5, cfg.WorkerConcurrency)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("SYNC_ENDPOINT", "https://erp.example.com/api/proposals")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "10")
	t.Setenv("REDIS_PASSWORD", "s3cret")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorageRedis, cfg.StorageDriver)
	assert.Equal(t, "https://erp.example.com/api/proposals", cfg.SyncEndpoint)
	assert.Equal(t, 10, cfg.RateLimitPerMinute)
	assert.Equal(t, "s3cret", cfg.RedisPassword)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		key, value, field string
	}{
		"unknown driver": {key: "STORAGE_DRIVER", value: "s3", field: "StorageDriver"},
		"bad sync url":   {key: "SYNC_ENDPOINT", value: "not a url", field: "SyncEndpoint"},
		"zero limit":     {key: "RATE_LIMIT_PER_MINUTE", value: "0", field: "RateLimitPerMinute"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestValidateRequiresDirectoryForFileStorage(t *testing.T) {
	cfg := Config{
		GotenbergURL:       "http://gotenberg:3000",
		StorageDriver:      StorageFile,
		WorkerConcurrency:  1,
		RateLimitPerMinute: 1,
		MaxBodyBytes:       1 << 20,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StorageDir")

	cfg.StorageDriver = StorageMemory
	require.NoError(t, cfg.Validate())
}
