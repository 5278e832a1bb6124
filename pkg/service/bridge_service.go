package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soxlink/soxlink-go/pkg/discovery"
	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/persistence"
	"github.com/soxlink/soxlink-go/pkg/registry"
	"github.com/soxlink/soxlink-go/pkg/sox"
	"github.com/soxlink/soxlink-go/pkg/worker"
)

// BridgeService exposes SOX devices as a node tree.
type BridgeService struct {
	mu sync.RWMutex

	config BridgeConfig
	state  ServiceState
	logger *slog.Logger

	dialer   sox.Dialer
	tree     *node.Tree
	store    *persistence.TreeStore
	pool     *worker.Pool
	registry *registry.Registry
}

// NewBridgeService creates a bridge dialing devices through dialer.
func NewBridgeService(config BridgeConfig, dialer sox.Dialer) (*BridgeService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if dialer == nil {
		return nil, fmt.Errorf("%w: no dialer", ErrInvalidConfig)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	svc := &BridgeService{
		config: config,
		state:  StateIdle,
		logger: logger,
		dialer: dialer,
		tree:   node.NewTree(),
	}
	if config.StatePath != "" {
		svc.store = persistence.NewTreeStore(config.StatePath)
	}
	return svc, nil
}

// Start restores persisted endpoints and reconnects them.
func (s *BridgeService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateStarting
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Restore(s.tree.Root()); err != nil {
			s.setState(StateIdle)
			return fmt.Errorf("restore state: %w", err)
		}
	}

	s.pool = worker.NewPool(s.config.Workers, s.logger)

	cfg := registry.Config{
		Tree:           s.tree,
		Dialer:         s.dialer,
		Executor:       s.pool,
		Backoff:        s.config.backoff(),
		ConnectTimeout: s.config.ConnectTimeout,
		QueueSize:      s.config.EventQueueSize,
		Logger:         s.logger,
		ProtocolLogger: s.config.ProtocolLogger,
	}
	if s.store != nil {
		cfg.Store = s.store
	}
	s.registry = registry.New(cfg)

	if s.config.Discovery.Enabled {
		browser := discovery.NewBrowser(discovery.BrowserConfig{
			Timeout:   s.config.Discovery.Timeout,
			Interface: s.config.Discovery.Interface,
			Source:    s.config.Discovery.Source,
			Logger:    s.logger,
		})
		discovery.InstallAction(s.tree.Root(), browser)
	}

	if err := s.registry.Restore(ctx); err != nil {
		s.logger.Warn("restore endpoints", "error", err)
	}

	s.setState(StateRunning)
	s.logger.Info("bridge started", "endpoints", len(s.registry.Endpoints()), "statePath", s.config.StatePath)
	return nil
}

// Stop closes all endpoints and waits for pending tasks.
func (s *BridgeService) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = StateStopping
	s.mu.Unlock()

	err := s.registry.Close()
	s.pool.Close()

	s.setState(StateStopped)
	s.logger.Info("bridge stopped")
	return err
}

func (s *BridgeService) setState(st ServiceState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the service state.
func (s *BridgeService) State() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Tree returns the node tree.
func (s *BridgeService) Tree() *node.Tree { return s.tree }

// Registry returns the endpoint registry, or nil before Start.
func (s *BridgeService) Registry() *registry.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}
