package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Local(t *testing.T) {
	cfg, err := ReadConfig()
	require.NoError(t, err)

	assert.Equal(t, "trading-service", cfg.ServiceName)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Saga.MaxRedrives)
	assert.Equal(t, 3, cfg.Saga.RetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.Saga.RetryInterval)
	assert.Equal(t, 3, cfg.Saga.ReleaseAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Saga.ReleaseInterval)
	assert.NotEmpty(t, cfg.Queues)
	assert.Len(t, cfg.Storage.Catalog, 3)
}

func TestReadConfigFrom_DefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.json"), []byte(`{"storage":{"driver":"memory"}}`), 0o600))
	t.Setenv("TRADING_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/trading")

	cfg, err := ReadConfigFrom(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Saga.MaxRedrives)
	assert.Equal(t, 3, cfg.Saga.ReleaseAttempts)
	assert.Equal(t, "postgres://u:p@db:5432/trading", cfg.GetDatabaseURL())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{Storage: Storage{Driver: StorageDriverMemory}, Saga: Saga{MaxRedrives: 5, RetryAttempts: 3}}
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedError string
	}{
		{name: "valid"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, expectedError: "unknown storage driver"},
		{name: "negative redrives", mutate: func(c *Config) { c.Saga.MaxRedrives = -1 }, expectedError: "max_redrives"},
		{name: "no attempts", mutate: func(c *Config) { c.Saga.RetryAttempts = 0 }, expectedError: "retry_attempts"},
		{name: "incomplete route", mutate: func(c *Config) { c.Queues = []Queue{{Topic: "inventory.grant_items"}} }, expectedError: "topic_arn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_GetDatabaseURL(t *testing.T) {
	cfg := Config{Database: Database{User: "postgres", Password: "pw", Host: "localhost", Port: 5432, Database: "trading", SSLMode: "disable"}}
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/trading?sslmode=disable", cfg.GetDatabaseURL())
}
