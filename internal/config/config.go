// Package config loads application configuration from built-in
// defaults, an optional YAML file, and CONDUCTOR_-prefixed environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CONDUCTOR_"

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// EngineConfig tunes the workflow engine.
type EngineConfig struct {
	StageDelayMin        time.Duration `koanf:"stage_delay_min"`
	StageDelayMax        time.Duration `koanf:"stage_delay_max"`
	StageHistoryLimit    int           `koanf:"stage_history_limit"`
	IncidentHistoryLimit int           `koanf:"incident_history_limit"`
	BusBuffer            int           `koanf:"bus_buffer"`
	Seed                 int64         `koanf:"seed"`
	Heartbeat            time.Duration `koanf:"heartbeat"`
}

// CatalogConfig points at an optional scenario catalog override file.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// RateLimitConfig bounds per-client request throughput.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	CORS      CORSConfig      `koanf:"cors"`
	Engine    EngineConfig    `koanf:"engine"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			RequestTimeout:    60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Engine: EngineConfig{
			StageDelayMin:        500 * time.Millisecond,
			StageDelayMax:        1500 * time.Millisecond,
			StageHistoryLimit:    50,
			IncidentHistoryLimit: 200,
			BusBuffer:            16,
			Heartbeat:            15 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
	}
}

// Load builds the configuration. A non-empty path must point at a
// readable YAML file; environment variables use double underscores for
// section nesting (CONDUCTOR_SERVER__PORT -> server.port).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := defaults()
	err = k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv loads configuration using the CONDUCTOR_CONFIG_FILE variable
// for the optional file path.
func FromEnv() (*Config, error) {
	return Load(os.Getenv("CONDUCTOR_CONFIG_FILE"))
}

func (c *Config) validate() error {
	if c.Engine.StageDelayMin < 0 || c.Engine.StageDelayMax < c.Engine.StageDelayMin {
		return fmt.Errorf("engine stage delay bounds are invalid: min=%s max=%s",
			c.Engine.StageDelayMin, c.Engine.StageDelayMax)
	}
	if c.Engine.StageHistoryLimit < 0 || c.Engine.IncidentHistoryLimit < 0 {
		return fmt.Errorf("engine history limits must be non-negative")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	return nil
}
