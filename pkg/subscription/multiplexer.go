package subscription

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/sox"
)

// Mask is the subscription requested for observed components.
const Mask = sox.MaskRuntime | sox.MaskConfig

// Subscriber is the part of sox.Client the multiplexer drives.
type Subscriber interface {
	Subscribe(ctx context.Context, c *sox.Component, mask sox.SubscriptionMask) error
	Unsubscribe(ctx context.Context, c *sox.Component, mask sox.SubscriptionMask) error
}

// Observers answers whether a node currently has value subscribers.
// *node.SubscriptionManager implements it.
type Observers interface {
	HasValueSub(n *node.Node) bool
}

// Config configures a Multiplexer.
type Config struct {
	Subscriber Subscriber
	Observers  Observers

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// Recorder for protocol capture (optional).
	Recorder *log.Recorder
}

// State is a snapshot of one component's multiplexing state.
type State struct {
	Observers int
	Mask      sox.SubscriptionMask
}

type componentState struct {
	nodes     []*node.Node
	observers int
	mask      sox.SubscriptionMask
}

// Multiplexer reference counts observers per component.
type Multiplexer struct {
	sub    Subscriber
	obs    Observers
	logger *slog.Logger
	rec    *log.Recorder

	mu     sync.Mutex
	states map[*sox.Component]*componentState
}

// New creates a Multiplexer.
func New(cfg Config) *Multiplexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = log.NewRecorder(nil, "")
	}
	return &Multiplexer{
		sub:    cfg.Subscriber,
		obs:    cfg.Observers,
		logger: logger,
		rec:    rec,
		states: make(map[*sox.Component]*componentState),
	}
}

func (m *Multiplexer) state(c *sox.Component) *componentState {
	st, ok := m.states[c]
	if !ok {
		st = &componentState{}
		m.states[c] = st
	}
	return st
}

// Track registers n as a value node of c. Detach scans tracked nodes to
// decide whether any observer remains.
func (m *Multiplexer) Track(c *sox.Component, n *node.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(c)
	if !slices.Contains(st.nodes, n) {
		st.nodes = append(st.nodes, n)
	}
}

func (m *Multiplexer) subscribed(c *sox.Component, st *componentState) bool {
	return st.mask.Has(sox.MaskRuntime) || c.Subscription().Has(sox.MaskRuntime)
}

// Attach records a new observer on one of c's nodes and subscribes c if it
// is not subscribed to runtime state yet.
func (m *Multiplexer) Attach(ctx context.Context, c *sox.Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(c)
	st.observers++
	if m.subscribed(c, st) {
		return nil
	}
	return m.subscribe(ctx, c, st)
}

// Detach records a lost observer and unsubscribes c once none of its
// tracked nodes has a value subscriber.
func (m *Multiplexer) Detach(ctx context.Context, c *sox.Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(c)
	st.observers = max(st.observers-1, 0)
	remaining := m.countObserved(st)
	if remaining > 0 {
		st.observers = max(st.observers, remaining)
		return nil
	}
	st.observers = 0
	if !m.subscribed(c, st) {
		return nil
	}
	return m.unsubscribe(ctx, c, st)
}

// Resync subscribes every tracked component that still has observed nodes.
// It is run after a fresh session has mirrored the tree.
func (m *Multiplexer) Resync(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for c, st := range m.states {
		st.observers = m.countObserved(st)
		if st.observers == 0 || m.subscribed(c, st) {
			continue
		}
		if err := m.subscribe(ctx, c, st); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Reset forgets all state. Subscriptions on the device are not touched.
func (m *Multiplexer) Reset() {
	m.mu.Lock()
	m.states = make(map[*sox.Component]*componentState)
	m.mu.Unlock()
}

// State returns c's current state.
func (m *Multiplexer) State(c *sox.Component) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[c]
	if !ok {
		return State{}
	}
	return State{Observers: st.observers, Mask: st.mask}
}

func (m *Multiplexer) countObserved(st *componentState) int {
	n := 0
	for _, vn := range st.nodes {
		if m.obs.HasValueSub(vn) {
			n++
		}
	}
	return n
}

func (m *Multiplexer) subscribe(ctx context.Context, c *sox.Component, st *componentState) error {
	start := time.Now()
	err := m.sub.Subscribe(ctx, c, Mask)
	m.rec.Request(log.RequestEvent{
		Operation: log.OpSubscribe,
		Component: c.Path(),
		Mask:      uint8(Mask),
		Duration:  time.Since(start),
	}, err)
	if err != nil {
		m.logger.Warn("subscribe failed", "component", c.Path(), "error", err)
		return err
	}
	st.mask |= Mask
	m.logger.Debug("subscribed", "component", c.Path(), "observers", st.observers)
	return nil
}

func (m *Multiplexer) unsubscribe(ctx context.Context, c *sox.Component, st *componentState) error {
	start := time.Now()
	err := m.sub.Unsubscribe(ctx, c, Mask)
	m.rec.Request(log.RequestEvent{
		Operation: log.OpUnsubscribe,
		Component: c.Path(),
		Mask:      uint8(Mask),
		Duration:  time.Since(start),
	}, err)
	if err != nil {
		m.logger.Warn("unsubscribe failed", "component", c.Path(), "error", err)
		return err
	}
	st.mask &^= Mask
	m.logger.Debug("unsubscribed", "component", c.Path())
	return nil
}
