package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReaderDefaults(t *testing.T) {
	t.Setenv("ENV", EnvLocal)
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("POSTGRES_USERNAME", "tracklin")
	t.Setenv("POSTGRES_DATABASE", "tracklin")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.True(t, cfg.Tasks.StrictTime)
	assert.Equal(t, "UTC", cfg.Tasks.Timezone)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestEnvReaderOverrides(t *testing.T) {
	t.Setenv("ENV", EnvProd)
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("TASKS_STRICT_TIME", "false")
	t.Setenv("RATE_LIMIT_AUTH_WINDOW", "30s")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.False(t, cfg.Tasks.StrictTime)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.AuthWindow)
}

func TestEnvReaderRequired(t *testing.T) {
	// t.Setenv restores the variables after the test.
	t.Setenv("ENV", "")
	t.Setenv("JWT_SIGNING_KEY", "")
	require.NoError(t, os.Unsetenv("ENV"))
	require.NoError(t, os.Unsetenv("JWT_SIGNING_KEY"))

	_, err := NewEnvReader().Read()
	assert.Error(t, err)
}

func TestEnvReaderInvalid(t *testing.T) {
	t.Setenv("ENV", EnvDev)
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)

	t.Run("timezone", func(t *testing.T) {
		t.Setenv("TASKS_TIMEZONE", "Mars/Olympus")
		_, err := NewEnvReader().Read()
		assert.Error(t, err)
	})

	t.Run("storage driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := NewEnvReader().Read()
		assert.Error(t, err)
	})

	t.Run("postgres credentials", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", StorageDriverPostgres)
		t.Setenv("POSTGRES_USERNAME", "")
		_, err := NewEnvReader().Read()
		assert.Error(t, err)
	})
}
