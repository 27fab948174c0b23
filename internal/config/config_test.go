package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                "8375",
		Env:                 "development",
		JWTSecret:           defaultJWTSecret,
		DBDriver:            "postgres",
		DBHost:              "localhost",
		DBName:              "campus_forum",
		DBPassword:          "password",
		TracingSamplerRatio: 1,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "9999")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "campus_forum.db", cfg.DBPath)
	assert.Equal(t, 120, cfg.FeedCacheTTLSeconds)
	assert.Equal(t, 20, cfg.FlagRateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid development config", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Port = "" }, wantErr: "PORT"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "unsupported DB_DRIVER"},
		{name: "sqlite needs a path", mutate: func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "" }, wantErr: "DB_PATH"},
		{name: "sampler ratio out of range", mutate: func(c *Config) { c.TracingSamplerRatio = 2 }, wantErr: "TRACING_SAMPLER_RATIO"},
		{
			name:    "production rejects default secret",
			mutate:  func(c *Config) { c.Env = "production" },
			wantErr: "must be changed",
		},
		{
			name: "production rejects sqlite",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = strings.Repeat("s", 40)
				c.DBDriver = "sqlite"
				c.DBPath = "forum.db"
			},
			wantErr: "sqlite",
		},
		{
			name: "production accepts strong settings",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = strings.Repeat("s", 40)
				c.DBPassword = "a-much-better-password"
				c.DBSSLMode = "require"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
