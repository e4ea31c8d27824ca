package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "admin-dashboard", cfg.Cloudinary.Folder)
	assert.Equal(t, "admin", cfg.Auth.AdminRole)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Kafka.BrokerList())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://admin@localhost/shop")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("REDIS_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://admin@localhost/shop", cfg.Database.URL)
	assert.Equal(t, "demo", cfg.Cloudinary.CloudName)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.BrokerList())
	assert.True(t, cfg.Log.Development)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  max_upload_bytes: 1024
database:
  url: postgres://file@localhost/shop
auth:
  issuer: https://id.example.com
`), 0o600))

	t.Setenv("AUTH_ISSUER", "https://env.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "postgres://file@localhost/shop", cfg.Database.URL)
	assert.Equal(t, "https://env.example.com", cfg.Auth.Issuer, "environment wins over the file")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{MaxUploadBytes: 1},
			Database:   DatabaseConfig{URL: "postgres://localhost/shop"},
			Cloudinary: CloudinaryConfig{CloudName: "c", APIKey: "k", APISecret: "s"},
			Auth:       AuthConfig{JWTSecret: "secret"},
		}
	}

	testCases := []struct {
		name     string
		mutate   func(c *Config)
		contains string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no database", func(c *Config) { c.Database.URL = "" }, "database.url"},
		{"no cloudinary secret", func(c *Config) { c.Cloudinary.APISecret = "" }, "cloudinary"},
		{"no jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
		{"no upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max_upload_bytes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.contains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.contains)
		})
	}
}
