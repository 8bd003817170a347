package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Server  HTTPServerConfig `json:"server"`
	LLM     LLMConfig        `json:"llm"`
	CORS    CORSConfig       `json:"cors"`
	Metrics MetricsConfig    `json:"metrics"`
	Log     LogConfig        `json:"log"`
}

type HTTPServerConfig struct {
	Host            string        `json:"host" default:"0.0.0.0"`
	Port            int           `json:"port" default:"8000"`
	ReadTimeout     time.Duration `json:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `json:"write_timeout" default:"90s"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" default:"30s"`
}

type LLMConfig struct {
	APIKey  string        `json:"api_key" required:"true"`
	BaseURL string        `json:"base_url" default:"https://generativelanguage.googleapis.com/v1beta"`
	Model   string        `json:"model" default:"gemini-1.5-flash"`
	Timeout time.Duration `json:"timeout" default:"60s"`
}

type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials" default:"true"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" default:"true"`
	Addr    string `json:"addr" default:":2112"`
}

type LogConfig struct {
	Level string `json:"level" default:"info"`
}

// Default returns the configuration used when nothing overrides it.
// CORS defaults allow every origin, the common methods and headers.
func Default() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Model:   "gemini-1.5-flash",
			Timeout: 60 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"*"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":2112",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Addr is the listen address of the public HTTP server.
func (c HTTPServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("GOOGLE_API_KEY is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm model is required"))
	}
	if c.LLM.BaseURL == "" {
		errs = append(errs, errors.New("llm base url is required"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm timeout must be positive, got %s", c.LLM.Timeout))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port out of range: %d", c.Server.Port))
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("cors allowed origins must not be empty"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}
