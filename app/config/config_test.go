package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		ConfigFileEnv,
		"SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
		"GOOGLE_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODEL", "LLM_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_METHODS", "CORS_ALLOWED_HEADERS", "CORS_ALLOW_CREDENTIALS",
		"METRICS_ENABLED", "METRICS_ADDR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedHeaders)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY is required")
}

func TestLoadFromHCLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "promptcraft.hcl", `
server {
  host         = "127.0.0.1"
  port         = 9090
  read_timeout = "5s"
}

llm {
  api_key = "file-key"
  model   = "gemini-1.5-pro"
  timeout = "15s"
}

cors {
  allowed_origins   = ["https://app.example.com"]
  allow_credentials = false
}

metrics {
  enabled = false
}

log {
  level = "debug"
}
`)
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, Default().CORS.AllowedMethods, cfg.CORS.AllowedMethods)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "promptcraft.hcl", `
llm {
  api_key = "file-key"
  model   = "gemini-1.5-pro"
}
`)
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("GOOGLE_API_KEY", "env-key")
	t.Setenv("LLM_TIMEOUT", "2m")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	assert.Equal(t, 2*time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "http"}, "parse SERVER_PORT"},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "server port out of range"},
		{"bad timeout", map[string]string{"LLM_TIMEOUT": "soon"}, "parse LLM_TIMEOUT"},
		{"negative timeout", map[string]string{"LLM_TIMEOUT": "-1s"}, "llm timeout must be positive"},
		{"bad bool", map[string]string{"METRICS_ENABLED": "maybe"}, "parse METRICS_ENABLED"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GOOGLE_API_KEY", "k")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadBrokenHCLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "k")
	t.Setenv(ConfigFileEnv, writeFile(t, "broken.hcl", `llm { model = `))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config file")
}
