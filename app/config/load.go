package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// ConfigFileEnv names the variable holding an optional HCL config file path.
const ConfigFileEnv = "PROMPTCRAFT_CONFIG"

type fileConfig struct {
	Server  *serverBlock  `hcl:"server,block"`
	LLM     *llmBlock     `hcl:"llm,block"`
	CORS    *corsBlock    `hcl:"cors,block"`
	Metrics *metricsBlock `hcl:"metrics,block"`
	Log     *logBlock     `hcl:"log,block"`
}

type serverBlock struct {
	Host            *string `hcl:"host,optional"`
	Port            *int    `hcl:"port,optional"`
	ReadTimeout     *string `hcl:"read_timeout,optional"`
	WriteTimeout    *string `hcl:"write_timeout,optional"`
	ShutdownTimeout *string `hcl:"shutdown_timeout,optional"`
}

type llmBlock struct {
	APIKey  *string `hcl:"api_key,optional"`
	BaseURL *string `hcl:"base_url,optional"`
	Model   *string `hcl:"model,optional"`
	Timeout *string `hcl:"timeout,optional"`
}

type corsBlock struct {
	AllowedOrigins   []string `hcl:"allowed_origins,optional"`
	AllowedMethods   []string `hcl:"allowed_methods,optional"`
	AllowedHeaders   []string `hcl:"allowed_headers,optional"`
	AllowCredentials *bool    `hcl:"allow_credentials,optional"`
}

type metricsBlock struct {
	Enabled *bool   `hcl:"enabled,optional"`
	Addr    *string `hcl:"addr,optional"`
}

type logBlock struct {
	Level *string `hcl:"level,optional"`
}

// Load builds the configuration from defaults, the HCL file named by
// PROMPTCRAFT_CONFIG (if set) and environment variables, in that order of
// precedence, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	if s := fc.Server; s != nil {
		setString(&c.Server.Host, s.Host)
		if s.Port != nil {
			c.Server.Port = *s.Port
		}
		if err := setDuration(&c.Server.ReadTimeout, s.ReadTimeout, "server.read_timeout"); err != nil {
			return err
		}
		if err := setDuration(&c.Server.WriteTimeout, s.WriteTimeout, "server.write_timeout"); err != nil {
			return err
		}
		if err := setDuration(&c.Server.ShutdownTimeout, s.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
			return err
		}
	}
	if l := fc.LLM; l != nil {
		setString(&c.LLM.APIKey, l.APIKey)
		setString(&c.LLM.BaseURL, l.BaseURL)
		setString(&c.LLM.Model, l.Model)
		if err := setDuration(&c.LLM.Timeout, l.Timeout, "llm.timeout"); err != nil {
			return err
		}
	}
	if cr := fc.CORS; cr != nil {
		if len(cr.AllowedOrigins) > 0 {
			c.CORS.AllowedOrigins = cr.AllowedOrigins
		}
		if len(cr.AllowedMethods) > 0 {
			c.CORS.AllowedMethods = cr.AllowedMethods
		}
		if len(cr.AllowedHeaders) > 0 {
			c.CORS.AllowedHeaders = cr.AllowedHeaders
		}
		if cr.AllowCredentials != nil {
			c.CORS.AllowCredentials = *cr.AllowCredentials
		}
	}
	if m := fc.Metrics; m != nil {
		if m.Enabled != nil {
			c.Metrics.Enabled = *m.Enabled
		}
		setString(&c.Metrics.Addr, m.Addr)
	}
	if lg := fc.Log; lg != nil {
		setString(&c.Log.Level, lg.Level)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}

	c.LLM.APIKey = getEnv("GOOGLE_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("GEMINI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("GEMINI_MODEL", c.LLM.Model)

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &c.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout},
		{"LLM_TIMEOUT", &c.LLM.Timeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			if err := setDuration(d.target, &v, d.key); err != nil {
				return err
			}
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CORS_ALLOWED_METHODS"); v != "" {
		c.CORS.AllowedMethods = splitList(v)
	}
	if v := os.Getenv("CORS_ALLOWED_HEADERS"); v != "" {
		c.CORS.AllowedHeaders = splitList(v)
	}
	if v := os.Getenv("CORS_ALLOW_CREDENTIALS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse CORS_ALLOW_CREDENTIALS: %w", err)
		}
		c.CORS.AllowCredentials = b
	}

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse METRICS_ENABLED: %w", err)
		}
		c.Metrics.Enabled = b
	}
	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)
	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
