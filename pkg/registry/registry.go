// Package registry keeps the set of configured SOX endpoints.
//
// Each endpoint is a top-level node holding its connection configuration,
// served by one connection.Manager. Endpoints are added through the
// addServer action on the root node (or Add), removed through their remove
// action (or Remove), and restored from persisted nodes at start.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soxlink/soxlink-go/pkg/connection"
	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/sox"
	"github.com/soxlink/soxlink-go/pkg/worker"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEndpointExists   = errors.New("endpoint already exists")
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
)

// Action names.
const (
	AddServerAction = "addServer"
	RemoveAction    = "remove"
)

// addServer parameter names.
const (
	ParamName     = "name"
	ParamURL      = "url"
	ParamPort     = "port"
	ParamUsername = "username"
	ParamPassword = "password"
)

// Saver persists the tree. *persistence.TreeStore implements it.
type Saver interface {
	Save(root *node.Node) error
}

// Endpoint is the configuration of one endpoint.
type Endpoint struct {
	Name     string
	URL      string
	Port     int
	Username string
	Password string
}

func (e Endpoint) validate() error {
	switch {
	case e.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidEndpoint)
	case strings.Contains(e.Name, "/"):
		return fmt.Errorf("%w: name %q contains '/'", ErrInvalidEndpoint, e.Name)
	case e.URL == "":
		return fmt.Errorf("%w: %s: empty url", ErrInvalidEndpoint, e.Name)
	case e.Port < 0 || e.Port > 65535:
		return fmt.Errorf("%w: %s: port %d", ErrInvalidEndpoint, e.Name, e.Port)
	}
	return nil
}

// Config configures a Registry.
type Config struct {
	Tree     *node.Tree
	Dialer   sox.Dialer
	Executor worker.Executor

	// Store persists endpoint nodes (optional).
	Store Saver

	// Manager settings passed to every endpoint.
	Backoff        connection.BackoffConfig
	ConnectTimeout time.Duration
	QueueSize      int

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// ProtocolLogger for protocol capture (optional).
	ProtocolLogger log.Logger
}

// Registry maps endpoint names to their managers.
type Registry struct {
	cfg    Config
	tree   *node.Tree
	logger *slog.Logger

	// mu guards the map and structural changes to the root's children.
	mu       sync.Mutex
	managers map[string]*connection.Manager
}

// New creates a Registry and installs the addServer action on the root.
func New(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{
		cfg:      cfg,
		tree:     cfg.Tree,
		logger:   logger,
		managers: make(map[string]*connection.Manager),
	}
	r.installAddServer()
	return r
}

func (r *Registry) installAddServer() {
	n, _ := r.tree.Root().CreateChild(AddServerAction)
	n.SetSerializable(false)
	n.SetAction(&node.Action{
		Params: []node.Parameter{
			{Name: ParamName, Type: node.String},
			{Name: ParamURL, Type: node.String},
			{Name: ParamPort, Type: node.Number},
			{Name: ParamUsername, Type: node.String},
			{Name: ParamPassword, Type: node.String, Optional: true},
		},
		Handler: func(ctx context.Context, req *node.ActionRequest) error {
			ep := Endpoint{}
			ep.Name, _ = req.Param(ParamName).Text()
			ep.URL, _ = req.Param(ParamURL).Text()
			port, ok := req.Param(ParamPort).Int()
			if !ok {
				return fmt.Errorf("%w: port must be an integer", ErrInvalidEndpoint)
			}
			ep.Port = int(port)
			ep.Username, _ = req.Param(ParamUsername).Text()
			ep.Password, _ = req.Param(ParamPassword).Text()
			return r.Add(ctx, ep)
		},
	})
}

// Add creates the endpoint node, persists it and connects checked. If the
// connect fails the node is removed again and the error returned.
func (r *Registry) Add(ctx context.Context, ep Endpoint) error {
	if err := ep.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	root := r.tree.Root()
	if _, ok := r.managers[ep.Name]; ok || root.Child(ep.Name) != nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEndpointExists, ep.Name)
	}
	n, _ := root.CreateChild(ep.Name)
	n.SetRoConfig(connection.ConfigURL, node.NewString(ep.URL))
	n.SetRoConfig(connection.ConfigPort, node.NewInt(int64(ep.Port)))
	n.SetRoConfig(connection.ConfigUsername, node.NewString(ep.Username))
	n.SetPassword(ep.Password)
	m := r.newManager(ep.Name, n)
	r.managers[ep.Name] = m
	r.mu.Unlock()

	r.persist()

	if err := m.Connect(ctx, true); err != nil {
		r.mu.Lock()
		if r.managers[ep.Name] == m {
			delete(r.managers, ep.Name)
			root.RemoveChild(ep.Name)
		}
		r.mu.Unlock()
		m.Close()
		r.persist()
		r.logger.Warn("add endpoint failed", "endpoint", ep.Name, "error", err)
		return err
	}
	r.logger.Info("endpoint added", "endpoint", ep.Name, "url", ep.URL, "port", ep.Port)
	return nil
}

// Remove closes the endpoint's manager, removes its node and persists.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	m, ok := r.managers[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEndpointNotFound, name)
	}
	delete(r.managers, name)
	r.tree.Root().RemoveChild(name)
	r.mu.Unlock()

	m.Close()
	r.persist()
	r.logger.Info("endpoint removed", "endpoint", name)
	return nil
}

// Restore creates managers for the non-action top-level nodes, typically
// loaded from the state file, and connects them unchecked.
func (r *Registry) Restore(ctx context.Context) error {
	var restored []*connection.Manager

	r.mu.Lock()
	for _, n := range r.tree.Root().Children() {
		if n.Action() != nil {
			continue
		}
		if _, ok := r.managers[n.Name()]; ok {
			continue
		}
		m := r.newManager(n.Name(), n)
		r.managers[n.Name()] = m
		restored = append(restored, m)
	}
	r.mu.Unlock()

	for _, m := range restored {
		if err := m.Connect(ctx, false); err != nil {
			r.logger.Warn("restore endpoint", "endpoint", m.Name(), "error", err)
		}
	}
	r.logger.Info("endpoints restored", "count", len(restored))
	return ctx.Err()
}

// Endpoint returns the named endpoint's manager.
func (r *Registry) Endpoint(name string) (*connection.Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[name]
	return m, ok
}

// Endpoints returns all managers sorted by name.
func (r *Registry) Endpoints() []*connection.Manager {
	r.mu.Lock()
	out := make([]*connection.Manager, 0, len(r.managers))
	for _, m := range r.managers {
		out = append(out, m)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Close closes every manager. Endpoint nodes are kept.
func (r *Registry) Close() error {
	var g errgroup.Group
	for _, m := range r.Endpoints() {
		g.Go(m.Close)
	}
	return g.Wait()
}

func (r *Registry) newManager(name string, n *node.Node) *connection.Manager {
	m := connection.NewManager(connection.Config{
		Name:           name,
		Node:           n,
		Observers:      r.tree.Subscriptions(),
		Dialer:         r.cfg.Dialer,
		Executor:       r.cfg.Executor,
		Backoff:        r.cfg.Backoff,
		ConnectTimeout: r.cfg.ConnectTimeout,
		QueueSize:      r.cfg.QueueSize,
		Logger:         r.logger,
		ProtocolLogger: r.cfg.ProtocolLogger,
	})

	rm, _ := n.CreateChild(RemoveAction)
	rm.SetSerializable(false)
	rm.SetAction(&node.Action{
		Handler: func(context.Context, *node.ActionRequest) error {
			return r.Remove(name)
		},
	})
	return m
}

func (r *Registry) persist() {
	if r.cfg.Store == nil {
		return
	}
	if err := r.cfg.Store.Save(r.tree.Root()); err != nil {
		r.logger.Error("persist tree", "error", err)
	}
}
