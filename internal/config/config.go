// Package config loads the configuration of the reactbus binaries from an
// optional YAML file and REACTBUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codewandler/reactbus/core/bus"
)

const EnvPrefix = "REACTBUS_"

var (
	ErrInvalidName     = errors.New("invalid bus name")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidStopMode = errors.New("invalid stop mode")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9090".
	Addr string `yaml:"addr"`
}

type WatchConfig struct {
	Paths []string `yaml:"paths"`
	// Extensions limits the file actor to these suffixes, e.g. [".go"].
	Extensions []string `yaml:"extensions"`
}

type Config struct {
	Name            string        `yaml:"name"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	StopMode        string        `yaml:"stop_mode"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Metrics         MetricsConfig `yaml:"metrics"`
	Watch           WatchConfig   `yaml:"watch"`
}

func Default() Config {
	return Config{
		Name:            "reactbus",
		Host:            "localhost",
		Port:            8888,
		StopMode:        bus.StopDrain.String(),
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		Watch: WatchConfig{
			Paths: []string{"."},
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config %s: %w", path, err)
		}
		defer f.Close()

		if cfg, err = Read(f); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read decodes YAML from r over the defaults. Unknown keys are rejected.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Name = Env("NAME", c.Name)
	c.Host = Env("HOST", c.Host)
	c.Port = EnvInt("PORT", c.Port)
	c.StopMode = Env("STOP_MODE", c.StopMode)
	c.LogLevel = Env("LOG_LEVEL", c.LogLevel)
	c.Metrics.Addr = Env("METRICS_ADDR", c.Metrics.Addr)

	if v := Env("SHUTDOWN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSHUTDOWN_TIMEOUT: %w", EnvPrefix, err)
		}
		c.ShutdownTimeout = d
	}
	if v := Env("WATCH_PATHS", ""); v != "" {
		c.Watch.Paths = splitList(v)
	}
	if v := Env("WATCH_EXTENSIONS", ""); v != "" {
		c.Watch.Extensions = splitList(v)
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.Contains(c.Name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, c.Name)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if _, err := c.BusStopMode(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// BusStopMode maps StopMode to bus.StopMode.
func (c Config) BusStopMode() (bus.StopMode, error) {
	switch strings.ToLower(c.StopMode) {
	case "", bus.StopDrain.String():
		return bus.StopDrain, nil
	case bus.StopImmediate.String():
		return bus.StopImmediate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStopMode, c.StopMode)
	}
}

func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return l, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
