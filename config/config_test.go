package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("GO_ENV", "test")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{
		"PORT", "AUTH0_DOMAIN", "AUTH0_AUDIENCE", "NOTE_TIME_ZONE", "ORDER_CODE_MAX_ATTEMPTS",
		"ORDER_NOTE_MAX_RETRIES", "STORE_TIMEOUT", "CORS_ALLOWED_ORIGINS", "JWT_TTL",
		"JWT_ISSUER", "AWS_S3_BUCKET", "REDIS_URL",
	} {
		unsetEnv(t, key)
	}
}

// unsetEnv removes key for the duration of the test; envconfig treats an empty value as set
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadReportsEnvFile(t *testing.T) {
	setMinimalEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, envFile, err := Load()
	require.NoError(t, err)
	assert.Empty(t, envFile)
	assert.Equal(t, "8080", cfg.Port)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("PORT=9191\n"), 0o600))
	cfg, envFile, err = Load()
	require.NoError(t, err)
	assert.Equal(t, ".env.test", envFile)
	assert.Equal(t, "9191", cfg.Port)
}

func TestFromEnvDefaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.GoEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 5, cfg.OrderCodeMaxAttempts)
	assert.Equal(t, 10, cfg.OrderNoteMaxRetries)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "an-furnish", cfg.JWTIssuer)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.UsesAuth0())
	assert.False(t, cfg.S3Enabled())
	assert.False(t, cfg.RateLimitEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("ORDER_CODE_MAX_ATTEMPTS", "3")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("NOTE_TIME_ZONE", "Asia/Dhaka")
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://anfurnish.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.OrderCodeMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, []string{"https://anfurnish.com"}, cfg.CORSAllowedOrigins)

	loc, err := cfg.NoteLocation()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Dhaka", loc.String())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreDriver:          DriverPostgres,
			DatabaseURL:          "postgres://localhost/db",
			JWTSecret:            "secret",
			OrderCodeMaxAttempts: 5,
			OrderNoteMaxRetries:  10,
			StoreTimeout:         time.Second,
			NoteTimeZone:         "UTC",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid postgres", func(c *Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL is required"},
		{"mongo without uri", func(c *Config) { c.StoreDriver = DriverMongo }, "MONGO_URI is required"},
		{"mongo with uri", func(c *Config) { c.StoreDriver = DriverMongo; c.MongoURI = "mongodb://localhost" }, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }, "unsupported STORE_DRIVER"},
		{"local auth without secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"auth0 without audience", func(c *Config) { c.JWTSecret = ""; c.Auth0Domain = "tenant.auth0.com" }, "AUTH0_AUDIENCE is required"},
		{"auth0 configured", func(c *Config) {
			c.JWTSecret = ""
			c.Auth0Domain = "tenant.auth0.com"
			c.Auth0Audience = "https://api.anfurnish.com"
		}, ""},
		{"zero code attempts", func(c *Config) { c.OrderCodeMaxAttempts = 0 }, "ORDER_CODE_MAX_ATTEMPTS"},
		{"zero note retries", func(c *Config) { c.OrderNoteMaxRetries = 0 }, "ORDER_NOTE_MAX_RETRIES"},
		{"zero timeout", func(c *Config) { c.StoreTimeout = 0 }, "STORE_TIMEOUT"},
		{"bad time zone", func(c *Config) { c.NoteTimeZone = "Mars/Olympus" }, "invalid NOTE_TIME_ZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
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

func TestEnvironmentHelpers(t *testing.T) {
	assert.True(t, (&Config{GoEnv: "production"}).IsProduction())
	assert.True(t, (&Config{GoEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{GoEnv: "development"}).IsTest())
}

func TestSetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := &Config{Port: "9090"}
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
}
