// Package config manages mcprobe's configuration using koanf/v2.
//
// Supports YAML files, environment variables, and CLI flag overrides
// (the last applied by cmd/mcprobe after Load returns).
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete mcprobe configuration (SPEC_FULL.md 6.1).
type Config struct {
	Scan       ScanConfig `koanf:"scan"`
	Log        LogConfig  `koanf:"log"`
	InputPath  string     `koanf:"input_path"`
	OutputPath string     `koanf:"output_path"`
}

// ScanConfig holds the probe timeouts and behavior knobs, mirroring
// spec.md 6's "Constants" table.
type ScanConfig struct {
	// ConnectTimeout bounds a single TCP dial.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	// AuthTimeout bounds the auth-probe classification loop.
	AuthTimeout time.Duration `koanf:"auth_timeout"`
	// ScanTimeout bounds one endpoint's entire dialogue.
	ScanTimeout time.Duration `koanf:"scan_timeout"`
	// MaxConcurrent caps simultaneously open sockets.
	MaxConcurrent int64 `koanf:"max_concurrent"`
	// DefaultPort is used when an endpoint line omits a port.
	DefaultPort uint16 `koanf:"default_port"`
	// StatusProtocolSentinel is the handshake protocol version sent
	// during the status dialogue.
	StatusProtocolSentinel int `koanf:"status_protocol_sentinel"`
	// CheckAuth enables the auth-probe state machine for every endpoint.
	CheckAuth bool `koanf:"check_auth"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with spec.md 6's documented
// defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			ConnectTimeout:         3 * time.Second,
			AuthTimeout:            3 * time.Second,
			ScanTimeout:            10 * time.Second,
			MaxConcurrent:          500,
			DefaultPort:            25565,
			StatusProtocolSentinel: 800,
			CheckAuth:              false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		InputPath:  "input.txt",
		OutputPath: "results.json",
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for mcprobe configuration.
// Variables are named MCPROBE_<section>_<key>, e.g. MCPROBE_SCAN_MAX_CONCURRENT.
const envPrefix = "MCPROBE_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (MCPROBE_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults. A missing file at path
// is not an error: defaults and env overrides still apply, matching the
// common case of running mcprobe with only flags and no config file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// envKeyMapper transforms MCPROBE_SCAN_MAX_CONCURRENT -> scan.max_concurrent.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	// Only the underscore after the section name is a nesting separator;
	// key names such as max_concurrent and input_path keep theirs.
	for _, section := range []string{"scan_", "log_"} {
		if strings.HasPrefix(s, section) {
			return strings.Replace(s, "_", ".", 1)
		}
	}
	return s
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"scan.connect_timeout":          defaults.Scan.ConnectTimeout.String(),
		"scan.auth_timeout":             defaults.Scan.AuthTimeout.String(),
		"scan.scan_timeout":             defaults.Scan.ScanTimeout.String(),
		"scan.max_concurrent":           defaults.Scan.MaxConcurrent,
		"scan.default_port":             defaults.Scan.DefaultPort,
		"scan.status_protocol_sentinel": defaults.Scan.StatusProtocolSentinel,
		"scan.check_auth":               defaults.Scan.CheckAuth,
		"log.level":                     defaults.Log.Level,
		"log.format":                    defaults.Log.Format,
		"input_path":                    defaults.InputPath,
		"output_path":                   defaults.OutputPath,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	ErrInvalidMaxConcurrent  = errors.New("scan.max_concurrent must be >= 1")
	ErrInvalidConnectTimeout = errors.New("scan.connect_timeout must be > 0")
	ErrInvalidAuthTimeout    = errors.New("scan.auth_timeout must be > 0")
	ErrInvalidScanTimeout    = errors.New("scan.scan_timeout must be > 0")
	ErrEmptyInputPath        = errors.New("input_path must not be empty")
	ErrEmptyOutputPath       = errors.New("output_path must not be empty")
)

// Validate checks the configuration for logical errors. Returns the first
// validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Scan.MaxConcurrent < 1 {
		return ErrInvalidMaxConcurrent
	}
	if cfg.Scan.ConnectTimeout <= 0 {
		return ErrInvalidConnectTimeout
	}
	if cfg.Scan.AuthTimeout <= 0 {
		return ErrInvalidAuthTimeout
	}
	if cfg.Scan.ScanTimeout <= 0 {
		return ErrInvalidScanTimeout
	}
	if cfg.InputPath == "" {
		return ErrEmptyInputPath
	}
	if cfg.OutputPath == "" {
		return ErrEmptyOutputPath
	}
	return nil
}

// ParseLogLevel maps a config string to a slog.Level, defaulting to Info
// for anything unrecognized.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLoggerWithLevel builds a slog.Logger writing to w, honoring level and
// text/JSON format.
func NewLoggerWithLevel(w io.Writer, cfg LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
