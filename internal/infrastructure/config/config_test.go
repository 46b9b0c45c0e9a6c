package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "soreconcile", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "ledger", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, "INV", cfg.Reconciliation.InvoiceNumberPrefix)
		assert.Equal(t, 5, cfg.Reconciliation.CandidateInvoiceLimit)
		assert.Equal(t, "0.01", cfg.Reconciliation.AmountTolerance)
		assert.True(t, cfg.Reconciliation.PartialFallbackEnabled)
		assert.Equal(t, "soreconcile", cfg.Telemetry.ServiceName)
		assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
		assert.False(t, cfg.Telemetry.ProfilingEnabled)
		assert.Equal(t, 60, cfg.HTTP.RateLimitRequests)
		assert.Equal(t, time.Minute, cfg.HTTP.RateLimitWindow)
	})

	t.Run("loads values from environment variables with SRC prefix", func(t *testing.T) {
		t.Setenv("SRC_APP_PORT", "9000")
		t.Setenv("SRC_DATABASE_HOST", "ledger.local")
		t.Setenv("SRC_DATABASE_PORT", "5433")
		t.Setenv("SRC_IDEMPOTENCY_BACKEND", "redis")
		t.Setenv("SRC_IDEMPOTENCY_TTL", "2h")
		t.Setenv("SRC_RECONCILIATION_AMOUNT_TOLERANCE", "0.5")
		t.Setenv("SRC_RECONCILIATION_PARTIAL_FALLBACK_ENABLED", "false")
		t.Setenv("SRC_RECONCILIATION_INVOICE_NUMBER_PREFIX", "FAC")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "ledger.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
		assert.Equal(t, 2*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, "FAC", cfg.Reconciliation.InvoiceNumberPrefix)
		assert.False(t, cfg.Reconciliation.PartialFallbackEnabled)

		m := cfg.Reconciliation.Matching()
		assert.True(t, decimal.RequireFromString("0.5").Equal(m.AmountTolerance))
		assert.Equal(t, "FAC", m.InvoiceNumberPrefix)
	})

	t.Run("loads values from a .env file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("SRC_APP_NAME=from-dotenv\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("SRC_APP_NAME") })

		cfg, err := Load(envFile)
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.App.Name)
	})

	t.Run("fails on missing explicit .env file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})

	t.Run("rejects unknown idempotency backend", func(t *testing.T) {
		t.Setenv("SRC_IDEMPOTENCY_BACKEND", "etcd")

		_, err := Load()
		assert.ErrorContains(t, err, "idempotency.backend")
	})
}

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Reconciliation.PartialFallbackEnabled = true
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"idle exceeds open", func(c *Config) { c.Database.MaxIdleConns = 100 }, "cannot exceed"},
		{"negative idle", func(c *Config) { c.Database.MaxIdleConns = -1 }, "cannot be negative"},
		{"tolerance not decimal", func(c *Config) { c.Reconciliation.AmountTolerance = "a cent" }, "not a decimal"},
		{"tolerance zero", func(c *Config) { c.Reconciliation.AmountTolerance = "0" }, "must be positive"},
		{"negative candidate limit", func(c *Config) { c.Reconciliation.CandidateInvoiceLimit = -1 }, "candidate_invoice_limit"},
		{"sampling above one", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, "sampling_ratio"},
		{"profiling without address", func(c *Config) { c.Telemetry.ProfilingEnabled = true }, "profiling_address"},
		{"production without password", func(c *Config) { c.App.Env = "production" }, "database.password"},
		{"production with sslmode disable", func(c *Config) {
			c.App.Env = "production"
			c.Database.Password = "secret"
		}, "sslmode"},
		{"production full sql", func(c *Config) {
			c.App.Env = "production"
			c.Database.Password = "secret"
			c.Database.SSLMode = "require"
			c.Telemetry.DBLogFullSQL = true
		}, "db_log_full_sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "odoo",
		Password: "p@ss word",
		DBName:   "ledger",
		SSLMode:  "require",
	}

	assert.Equal(t, "postgres://odoo:p%40ss%20word@db:5432/ledger?sslmode=require", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
