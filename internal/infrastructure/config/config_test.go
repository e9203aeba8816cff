package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ERP_AUTH_SECRET", "test-secret")
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		devEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "backoffice", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "backoffice", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowThreshold)
		assert.True(t, cfg.Auth.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, 10*time.Minute, cfg.Tenancy.CacheTTL)
	})

	t.Run("ledger defaults to five and seven day terms", func(t *testing.T) {
		devEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Ledger.ReceivableDueDays)
		assert.Equal(t, 7, cfg.Ledger.PayableDueDays)
		assert.False(t, cfg.Ledger.RejectNegativeStock)
	})

	t.Run("loads values from environment variables with ERP prefix", func(t *testing.T) {
		devEnv(t)
		t.Setenv("ERP_APP_PORT", "9000")
		t.Setenv("ERP_DATABASE_HOST", "testdb.local")
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("ERP_LEDGER_RECEIVABLE_DUE_DAYS", "30")
		t.Setenv("ERP_LEDGER_REJECT_NEGATIVE_STOCK", "true")
		t.Setenv("ERP_TENANCY_CACHE_TTL", "1m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30, cfg.Ledger.ReceivableDueDays)
		assert.Equal(t, 7, cfg.Ledger.PayableDueDays)
		assert.True(t, cfg.Ledger.RejectNegativeStock)
		assert.Equal(t, time.Minute, cfg.Tenancy.CacheTTL)
	})

	t.Run("zero due days are kept", func(t *testing.T) {
		devEnv(t)
		t.Setenv("ERP_LEDGER_PAYABLE_DUE_DAYS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Ledger.PayableDueDays)
	})

	t.Run("requires a secret when auth is enabled", func(t *testing.T) {
		t.Setenv("ERP_AUTH_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.secret")
	})

	t.Run("development mode without auth", func(t *testing.T) {
		t.Setenv("ERP_AUTH_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Auth.Enabled)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		v := viper.New()
		v.Set("auth.secret", "s")
		cfg, err := fromViper(v)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 100 }, wantErr: "cannot exceed"},
		{name: "negative idle", mutate: func(c *Config) { c.Database.MaxIdleConns = -1 }, wantErr: "cannot be negative"},
		{name: "negative receivable days", mutate: func(c *Config) { c.Ledger.ReceivableDueDays = -1 }, wantErr: "receivable_due_days"},
		{name: "negative payable days", mutate: func(c *Config) { c.Ledger.PayableDueDays = -2 }, wantErr: "payable_due_days"},
		{name: "sampling ratio above one", mutate: func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, wantErr: "sampling_ratio"},
		{
			name:    "production requires long secret",
			mutate:  func(c *Config) { c.App.Env = "production" },
			wantErr: "at least 32 characters",
		},
		{
			name: "production rejects wildcard CORS",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.Auth.Secret = "0123456789abcdef0123456789abcdef"
				c.Database.Password = "pw"
				c.Database.SSLMode = "require"
				c.HTTP.CORSAllowOrigins = []string{"*"}
			},
			wantErr: "cors_allow_origins",
		},
		{
			name: "production disables open swagger",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.Auth.Secret = "0123456789abcdef0123456789abcdef"
				c.Database.Password = "pw"
				c.Database.SSLMode = "require"
				c.Swagger.Enabled = true
			},
			wantErr: "swagger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromViper_TOML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[auth]
enabled = false

[ledger]
receivable_due_days = 10
payable_due_days = 14
reject_negative_stock = true

[http]
cors_allow_origins = ["http://localhost:3000"]
`)))

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 10, cfg.Ledger.ReceivableDueDays)
	assert.Equal(t, 14, cfg.Ledger.PayableDueDays)
	assert.True(t, cfg.Ledger.RejectNegativeStock)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSAllowOrigins)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{MaxOpenConns: 0, MaxIdleConns: -1},
		Ledger:   LedgerConfig{ReceivableDueDays: -1},
	}

	err := cfg.validate()
	require.Error(t, err)
	for _, want := range []string{"max_open_conns", "max_idle_conns", "receivable_due_days"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_EnvironmentLists(t *testing.T) {
	devEnv(t)
	t.Setenv("ERP_SWAGGER_ALLOWED_IPS", "10.0.0.0/8,127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Swagger.AllowedIPs)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/ledger?sslmode=disable", d.DSN())
}
