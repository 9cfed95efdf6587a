package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		// t.Setenv restores the previous value after the test.
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "8080")
		t.Setenv("APP_ENV", "test")
		t.Setenv("DB_MAX_OPEN_CONNS", "25")
		t.Setenv("ORDER_SEQUENCE_STRATEGY", "max")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, 25, cfg.DBMaxOpenConns)
		assert.Equal(t, "max", cfg.SequenceStrategy)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("DB_HOST", "")
		t.Setenv("APP_PORT", "")
		t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
		t.Setenv("ORDER_SEQUENCE_STRATEGY", "")
		t.Setenv("ORDER_CREATE_RETRIES", "")
		t.Setenv("ORDER_TIMEZONE", "")
		t.Setenv("CORS_ORIGINS", "")
		t.Setenv("MIGRATIONS_DIR", "")

		cfg := LoadConfig()

		assert.Equal(t, "sqlite", cfg.DBDriver)
		assert.Equal(t, "5000", cfg.AppPort)
		assert.Equal(t, 10, cfg.DBMaxOpenConns)
		assert.Equal(t, "counter", cfg.SequenceStrategy)
		assert.Equal(t, 3, cfg.CreateRetries)
		assert.Equal(t, "UTC", cfg.Timezone)
		assert.Equal(t, "*", cfg.CORSOrigins)
		assert.Equal(t, "migrations/sqlite", cfg.MigrationsDir)
	})
}
