package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		Port:               "8375",
		DBDriver:           "postgres",
		DBPassword:         "s3cret-pass",
		DBSSLMode:          "require",
		Env:                "development",
		StoreTimeout:       5 * time.Second,
		FollowRetryLimit:   1,
		TracingSampleRatio: 1,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8375", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 1, cfg.FollowRetryLimit)
	assert.Equal(t, time.Duration(0), cfg.ReaperRetention)
	assert.Equal(t, 100, cfg.RateLimit)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestLoadConfigMissingProfile(t *testing.T) {
	t.Setenv("APP_ENV", "staging")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Port = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.StoreTimeout = 0 }, wantErr: true},
		{name: "negative retry", mutate: func(c *Config) { c.FollowRetryLimit = -1 }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: true},
		{name: "bad ratio", mutate: func(c *Config) { c.TracingSampleRatio = 1.5 }, wantErr: true},
		{
			name: "production default secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "your-secret-key-change-in-production"
			},
			wantErr: true,
		},
		{
			name: "production weak db password",
			mutate: func(c *Config) {
				c.Env = "production"
				c.DBPassword = "password"
			},
			wantErr: true,
		},
		{
			name: "production sqlite skips db password",
			mutate: func(c *Config) {
				c.Env = "production"
				c.DBDriver = "sqlite"
				c.DBPassword = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
