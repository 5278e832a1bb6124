package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/soxlink/soxlink-go/pkg/service"
	"github.com/soxlink/soxlink-go/pkg/sox/simulator"
	"gopkg.in/yaml.v3"
)

// Config holds the bridge configuration after merging defaults, the YAML
// file, SOXLINK_* environment variables and flags, in that order.
type Config struct {
	StatePath          string        `yaml:"statePath"`
	ReconnectInterval  time.Duration `yaml:"reconnectInterval"`
	ExponentialBackoff bool          `yaml:"exponentialBackoff"`
	ConnectTimeout     time.Duration `yaml:"connectTimeout"`
	Workers            int           `yaml:"workers"`
	EventQueueSize     int           `yaml:"eventQueueSize"`
	LogLevel           string        `yaml:"logLevel"`
	ProtocolLog        string        `yaml:"protocolLog"`

	Discovery struct {
		Enabled   bool          `yaml:"enabled"`
		Interface string        `yaml:"interface"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"discovery"`

	// Devices are served by the simulator when running with -simulate.
	Devices []simulator.DeviceSpec `yaml:"devices"`
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() *Config {
	d := service.DefaultBridgeConfig()
	cfg := &Config{
		ReconnectInterval: d.ReconnectInterval,
		ConnectTimeout:    d.ConnectTimeout,
		Workers:           d.Workers,
		EventQueueSize:    d.EventQueueSize,
		LogLevel:          "info",
	}
	cfg.Discovery.Timeout = d.Discovery.Timeout
	return cfg
}

// LoadConfig reads path over the defaults. An empty path returns defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvState             = "SOXLINK_STATE"
	EnvLogLevel          = "SOXLINK_LOG_LEVEL"
	EnvProtocolLog       = "SOXLINK_PROTOCOL_LOG"
	EnvReconnectInterval = "SOXLINK_RECONNECT_INTERVAL"
	EnvConnectTimeout    = "SOXLINK_CONNECT_TIMEOUT"
	EnvWorkers           = "SOXLINK_WORKERS"
	EnvDiscover          = "SOXLINK_DISCOVER"
	EnvInterface         = "SOXLINK_INTERFACE"
)

// ApplyEnv overrides cfg with the SOXLINK_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvState); ok {
		c.StatePath = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvProtocolLog); ok {
		c.ProtocolLog = v
	}
	if v, ok := lookup(EnvInterface); ok {
		c.Discovery.Interface = v
	}
	if v, ok := lookup(EnvReconnectInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReconnectInterval, err)
		}
		c.ReconnectInterval = d
	}
	if v, ok := lookup(EnvConnectTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConnectTimeout, err)
		}
		c.ConnectTimeout = d
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvDiscover); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDiscover, err)
		}
		c.Discovery.Enabled = b
	}
	return nil
}

// BridgeConfig converts c for the service.
func (c *Config) BridgeConfig() service.BridgeConfig {
	bc := service.DefaultBridgeConfig()
	bc.StatePath = c.StatePath
	bc.ReconnectInterval = c.ReconnectInterval
	bc.ExponentialBackoff = c.ExponentialBackoff
	bc.ConnectTimeout = c.ConnectTimeout
	bc.Workers = c.Workers
	bc.EventQueueSize = c.EventQueueSize
	bc.Discovery.Enabled = c.Discovery.Enabled
	bc.Discovery.Interface = c.Discovery.Interface
	bc.Discovery.Timeout = c.Discovery.Timeout
	return bc
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// parseLevel maps debug, info, warn and error to slog levels.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}

// buildNetwork attaches one simulated device per spec.
func buildNetwork(specs []simulator.DeviceSpec) (*simulator.Network, error) {
	network := simulator.NewNetwork()
	for _, spec := range specs {
		addr, port := spec.Endpoint()
		if addr == "" {
			return nil, fmt.Errorf("device %s: no address", spec.Name)
		}
		if _, ok := network.Device(addr, port); ok {
			return nil, fmt.Errorf("device %s: %s:%d already taken", spec.Name, addr, port)
		}
		dev, err := spec.Build()
		if err != nil {
			return nil, err
		}
		network.Attach(addr, port, dev)
	}
	return network, nil
}
