package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soxlink/soxlink-go/pkg/connection"
	"github.com/soxlink/soxlink-go/pkg/discovery"
	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/soxlink/soxlink-go/pkg/worker"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateStarting - service is starting up.
	StateStarting

	// StateRunning - service is running normally.
	StateRunning

	// StateStopping - service is shutting down.
	StateStopping

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// DiscoveryConfig configures the discover action.
type DiscoveryConfig struct {
	Enabled bool

	// Interface restricts mDNS to one network interface.
	Interface string

	// Timeout bounds one discover call.
	Timeout time.Duration

	// Source overrides the mDNS source (tests).
	Source discovery.Source
}

// BridgeConfig configures a BridgeService.
type BridgeConfig struct {
	// StatePath is the YAML state file. Empty disables persistence.
	StatePath string

	// ReconnectInterval is the fixed delay between reconnect attempts.
	ReconnectInterval time.Duration

	// ExponentialBackoff replaces the fixed interval with 1s..60s
	// exponential backoff with jitter.
	ExponentialBackoff bool

	// ConnectTimeout bounds each dial.
	ConnectTimeout time.Duration

	// Workers is the number of concurrently running reconnect and invoke
	// tasks.
	Workers int

	// EventQueueSize is the per-endpoint event loop capacity.
	EventQueueSize int

	Discovery DiscoveryConfig

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// ProtocolLogger for protocol capture (optional).
	ProtocolLogger log.Logger
}

// DefaultBridgeConfig returns a BridgeConfig with sensible defaults.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		ReconnectInterval: connection.DefaultRetryInterval,
		ConnectTimeout:    connection.DefaultConnectTimeout,
		Workers:           worker.DefaultSize,
		EventQueueSize:    connection.DefaultQueueSize,
		Discovery: DiscoveryConfig{
			Timeout: discovery.BrowseTimeout,
		},
	}
}

// Validate checks if the bridge config is valid.
func (c *BridgeConfig) Validate() error {
	switch {
	case c.ReconnectInterval <= 0:
		return fmt.Errorf("%w: reconnect interval %v", ErrInvalidConfig, c.ReconnectInterval)
	case c.ConnectTimeout <= 0:
		return fmt.Errorf("%w: connect timeout %v", ErrInvalidConfig, c.ConnectTimeout)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.EventQueueSize < 1:
		return fmt.Errorf("%w: event queue size %d", ErrInvalidConfig, c.EventQueueSize)
	case c.Discovery.Enabled && c.Discovery.Timeout <= 0:
		return fmt.Errorf("%w: discovery timeout %v", ErrInvalidConfig, c.Discovery.Timeout)
	}
	return nil
}

func (c *BridgeConfig) backoff() connection.BackoffConfig {
	if c.ExponentialBackoff {
		return connection.ExponentialBackoff()
	}
	return connection.FixedBackoff(c.ReconnectInterval)
}
