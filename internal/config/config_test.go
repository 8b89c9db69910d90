package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("STORERATING_JWT__SECRET_KEY", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.SecretKey)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenDuration)
	assert.True(t, cfg.Storage.Seed)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8081"
storage:
  driver: sqlite
  path: /tmp/ratings.db
  latency: 250ms
jwt:
  secret_key: file-secret
log:
  level: debug
cors:
  allowed_origins:
    - https://a.example.com
`)
	t.Setenv("STORERATING_SERVER__PORT", "9000")
	t.Setenv("STORERATING_STORAGE__MAX_OPEN_CONNS", "3")
	t.Setenv("STORERATING_STORAGE__SEED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port, "env overrides file")
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/ratings.db", cfg.Storage.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.Latency)
	assert.Equal(t, 3, cfg.Storage.MaxOpenConns)
	assert.False(t, cfg.Storage.Seed)
	assert.Equal(t, "file-secret", cfg.JWT.SecretKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, []string{"https://a.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.JWT.SecretKey = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults with secret"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: "unknown storage.driver"},
		{name: "postgres without url", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }, wantErr: "storage.url"},
		{name: "postgres with url", mutate: func(c *Config) {
			c.Storage.Driver = DriverPostgres
			c.Storage.URL = "postgres://localhost/ratings"
		}},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.SecretKey = "" }, wantErr: "jwt.secret_key"},
		{name: "negative latency", mutate: func(c *Config) { c.Storage.Latency = -time.Second }, wantErr: "storage.latency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
