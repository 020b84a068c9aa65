package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"B2B_APP_NAME":          os.Getenv("B2B_APP_NAME"),
		"B2B_APP_ENV":           os.Getenv("B2B_APP_ENV"),
		"B2B_APP_PORT":          os.Getenv("B2B_APP_PORT"),
		"B2B_DATABASE_HOST":     os.Getenv("B2B_DATABASE_HOST"),
		"B2B_DATABASE_PASSWORD": os.Getenv("B2B_DATABASE_PASSWORD"),
		"B2B_DATABASE_SSLMODE":  os.Getenv("B2B_DATABASE_SSLMODE"),
		"B2B_SOURCE_PASSWORD":   os.Getenv("B2B_SOURCE_PASSWORD"),
		"B2B_AUTH_CATALOG_KEY":  os.Getenv("B2B_AUTH_CATALOG_KEY"),
		"B2B_AUTH_LEDGER_KEY":   os.Getenv("B2B_AUTH_LEDGER_KEY"),
		"B2B_AUTH_OPERATOR_KEY": os.Getenv("B2B_AUTH_OPERATOR_KEY"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "b2b-bridge", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "b2b", cfg.Database.DBName)
		assert.Equal(t, "postgres", cfg.Source.Driver)
		assert.Equal(t, "images", cfg.Images.Dir)
		assert.Equal(t, "settings.json", cfg.Sync.PrefsPath)
	})

	t.Run("env vars override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("B2B_APP_NAME", "sync-agent")
		os.Setenv("B2B_DATABASE_HOST", "db.internal")
		os.Setenv("B2B_SOURCE_PASSWORD", "s3cret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sync-agent", cfg.App.Name)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "s3cret", cfg.Source.Password)
	})

	t.Run("production requires credentials", func(t *testing.T) {
		clearEnv()
		os.Setenv("B2B_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("production accepts a complete configuration", func(t *testing.T) {
		clearEnv()
		os.Setenv("B2B_APP_ENV", "production")
		os.Setenv("B2B_DATABASE_PASSWORD", "pw")
		os.Setenv("B2B_DATABASE_SSLMODE", "require")
		os.Setenv("B2B_AUTH_CATALOG_KEY", "k1")
		os.Setenv("B2B_AUTH_LEDGER_KEY", "k2")
		os.Setenv("B2B_AUTH_OPERATOR_KEY", "k3")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "require", cfg.Database.SSLMode)
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "b2b",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "sslmode=disable")
	// Password must be escaped, not embedded raw
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestSourceResolvedDSN(t *testing.T) {
	s := SourceConfig{DSN: "host=erp.local user=reader password=${password} dbname=netsis"}
	assert.Equal(t, s.DSN, s.ResolvedDSN())

	s.Password = "secret"
	assert.Equal(t, "host=erp.local user=reader password=secret dbname=netsis", s.ResolvedDSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
