package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/soxlink/soxlink-go/pkg/mirror"
	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/sox"
	"github.com/soxlink/soxlink-go/pkg/subscription"
	"github.com/soxlink/soxlink-go/pkg/worker"
)

// Connection errors.
var (
	ErrTransport    = errors.New("transport failure")
	ErrClosed       = errors.New("connection manager closed")
	ErrNotConnected = errors.New("not connected")
	ErrBadEndpoint  = errors.New("endpoint configuration incomplete")
)

// Endpoint configuration keys stored as roConfig on the endpoint node.
const (
	ConfigURL      = "url"
	ConfigPort     = "port"
	ConfigUsername = "username"
)

// Defaults.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultQueueSize      = 256
)

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no active session.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active session.
	StateConnected

	// StateReconnectScheduled indicates a retry timer is armed.
	StateReconnectScheduled

	// StateClosed indicates the manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnectScheduled:
		return "RECONNECT_SCHEDULED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Manager.
type Config struct {
	// Name is the endpoint name, used in logs and protocol events.
	Name string

	// Node is the endpoint node. It holds the url, port and username
	// roConfig entries and the password. The device tree is mirrored
	// below it.
	Node *node.Node

	// Observers answers whether mirrored nodes have value subscribers,
	// normally the tree's *node.SubscriptionManager.
	Observers subscription.Observers

	Dialer   sox.Dialer
	Executor worker.Executor

	// Backoff is the retry policy. Zero means FixedBackoff(DefaultRetryInterval).
	Backoff BackoffConfig

	// ConnectTimeout bounds Dial. Zero means DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// QueueSize is the event loop capacity. Zero means DefaultQueueSize.
	QueueSize int

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// ProtocolLogger for protocol capture (optional).
	ProtocolLogger log.Logger
}

// session is one connected generation. Events carry the session they were
// raised for; events from a retired session are ignored.
type session struct {
	m       *Manager
	client  sox.Client
	app     *sox.Component
	builder *mirror.Builder
	mux     *subscription.Multiplexer
	connID  string
	retired chan struct{}
}

// Manager manages one endpoint's session with automatic reconnection.
type Manager struct {
	name      string
	node      *node.Node
	observers subscription.Observers
	dialer    sox.Dialer
	exec      worker.Executor
	backoff   *Backoff
	timeout   time.Duration
	logger    *slog.Logger
	rec       *log.Recorder

	// connMu serializes connect, disconnect and reconnect.
	connMu sync.Mutex

	mu            sync.RWMutex
	state         State
	sess          *session
	timer         worker.Timer
	timerGen      uint64
	onStateChange func(oldState, newState State)

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	events    chan event
	stop     chan struct{}
	loopDone chan struct{}
}

// NewManager creates a manager for the endpoint node and starts its event
// loop. It does not connect.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("endpoint", cfg.Name)
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = FixedBackoff(DefaultRetryInterval)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		name:      cfg.Name,
		node:      cfg.Node,
		observers: cfg.Observers,
		dialer:    cfg.Dialer,
		exec:      cfg.Executor,
		backoff:   NewBackoff(cfg.Backoff),
		timeout:   cfg.ConnectTimeout,
		logger:    logger,
		rec:       log.NewRecorder(cfg.ProtocolLogger, cfg.Name),
		state:     StateDisconnected,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan event, cfg.QueueSize),
		stop:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	m.installVersionAction()
	go m.loop()
	return m
}

// Name returns the endpoint name.
func (m *Manager) Name() string { return m.name }

// Node returns the endpoint node.
func (m *Manager) Node() *node.Node { return m.node }

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if a session is active.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Client returns the active session's client, or nil.
func (m *Manager) Client() sox.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil
	}
	return m.sess.client
}

// ConnectionID returns the active session's ID, or "".
func (m *Manager) ConnectionID() string {
	return m.rec.ConnectionID()
}

// OnStateChange sets a callback for state changes.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// Connect establishes the session. A pending reconnect timer is cancelled
// first, and a call that finds a session already present returns nil
// without dialing.
//
// A checked connect returns transport failures wrapped in ErrTransport. An
// unchecked connect logs them, schedules a retry and returns nil.
func (m *Manager) Connect(ctx context.Context, checked bool) error {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	return m.connect(ctx, checked)
}

// retry runs a scheduled reconnect unless its timer was superseded or
// stopped after it fired.
func (m *Manager) retry(ctx context.Context, gen uint64) {
	m.connMu.Lock()
	defer m.connMu.Unlock()

	m.mu.RLock()
	live := m.timerGen == gen && m.state == StateReconnectScheduled
	m.mu.RUnlock()
	if !live {
		return
	}
	_ = m.connect(ctx, false)
}

// connect does the work of Connect. connMu must be held.
func (m *Manager) connect(ctx context.Context, checked bool) error {
	m.mu.Lock()
	if m.state == StateClosed || m.ctx.Err() != nil {
		m.mu.Unlock()
		return ErrClosed
	}
	m.stopTimerLocked()
	if m.sess != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	m.setState(StateConnecting, "connect")

	s, err := m.open(ctx)
	if err != nil {
		if m.ctx.Err() != nil {
			return ErrClosed
		}
		err = fmt.Errorf("%w: %s: %w", ErrTransport, m.name, err)
		m.rec.Error(err, "connect")
		if checked {
			m.setState(StateDisconnected, err.Error())
			return err
		}
		m.scheduleReconnect(err)
		return nil
	}

	m.mu.Lock()
	if m.state == StateClosed || m.ctx.Err() != nil {
		m.mu.Unlock()
		s.client.Close()
		m.rec.SetSession("", "")
		return ErrClosed
	}
	m.sess = s
	m.mu.Unlock()
	m.backoff.Reset()

	m.setState(StateConnected, "")
	m.logger.Info("connected", "connectionID", s.connID)
	m.postWait(event{kind: eventBuildRoot, sess: s})

	start := time.Now()
	err = s.client.SubscribeToAllTreeEvents(ctx)
	m.rec.Request(log.RequestEvent{Operation: log.OpSubscribeTree, Duration: time.Since(start)}, err)
	if err != nil {
		m.logger.Warn("tree event subscription failed", "error", err)
	}

	go m.watch(s)
	return nil
}

// open dials and loads the application tree.
func (m *Manager) open(ctx context.Context) (*session, error) {
	creds, err := m.credentials()
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	stop := context.AfterFunc(m.ctx, cancel)
	defer stop()

	connID := uuid.New().String()
	m.rec.SetSession(connID, creds.HostPort())

	start := time.Now()
	client, err := m.dialer.Dial(dialCtx, creds)
	m.rec.Request(log.RequestEvent{Operation: log.OpDial, Value: creds.HostPort(), Duration: time.Since(start)}, err)
	if err != nil {
		m.rec.SetSession("", "")
		return nil, err
	}

	start = time.Now()
	app, err := client.LoadApp(dialCtx)
	m.rec.Request(log.RequestEvent{Operation: log.OpLoadApp, Duration: time.Since(start)}, err)
	if err != nil {
		client.Close()
		m.rec.SetSession("", "")
		return nil, err
	}

	s := &session{
		m:       m,
		client:  client,
		app:     app,
		connID:  connID,
		retired: make(chan struct{}),
	}
	s.mux = subscription.New(subscription.Config{
		Subscriber: client,
		Observers:  m.observers,
		Logger:     m.logger,
		Recorder:   m.rec,
	})
	s.builder = mirror.New(mirror.Config{
		Client:   client,
		Executor: m.exec,
		Mux:      s.mux,
		Sink:     s,
		Logger:   m.logger,
		Recorder: m.rec,
	})
	return s, nil
}

func (m *Manager) credentials() (sox.Credentials, error) {
	var creds sox.Credentials
	if v, ok := m.node.RoConfig(ConfigURL); ok {
		creds.Address, _ = v.Text()
	}
	if creds.Address == "" {
		return creds, fmt.Errorf("%w: no %s", ErrBadEndpoint, ConfigURL)
	}
	if v, ok := m.node.RoConfig(ConfigPort); ok {
		p, _ := v.Int()
		creds.Port = int(p)
	}
	if creds.Port == 0 {
		creds.Port = sox.DefaultPort
	}
	if v, ok := m.node.RoConfig(ConfigUsername); ok {
		creds.Username, _ = v.Text()
	}
	creds.Password, _ = m.node.Password()
	return creds, nil
}

// watch waits for the session to end and reconnects if it is still the
// active one.
func (m *Manager) watch(s *session) {
	select {
	case <-s.retired:
	case <-s.client.Done():
		m.lost(s)
	}
}

func (m *Manager) lost(s *session) {
	m.connMu.Lock()
	defer m.connMu.Unlock()

	m.mu.Lock()
	if m.sess != s || m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.sess = nil
	m.mu.Unlock()

	m.retire(s)
	m.scheduleReconnect(fmt.Errorf("%w: %s: connection lost", ErrTransport, m.name))
}

// scheduleReconnect arms the retry timer. connMu must be held.
func (m *Manager) scheduleReconnect(cause error) {
	delay := m.backoff.Next()
	m.logger.Warn("connect failed, retrying", "delay", delay, "attempt", m.backoff.Attempts(), "error", cause)

	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.stopTimerLocked()
	gen := m.timerGen
	m.timer = m.exec.AfterFunc(delay, func(ctx context.Context) {
		m.retry(ctx, gen)
	})
	m.mu.Unlock()

	m.setState(StateReconnectScheduled, cause.Error())
}

// stopTimerLocked also invalidates a timer task that already fired.
func (m *Manager) stopTimerLocked() {
	m.timerGen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// retire closes a session's client and ignores its pending events.
func (m *Manager) retire(s *session) {
	close(s.retired)
	s.mux.Reset()
	start := time.Now()
	err := s.client.Close()
	m.rec.Request(log.RequestEvent{Operation: log.OpClose, Duration: time.Since(start)}, err)
	if err != nil {
		m.logger.Debug("close client", "error", err)
	}
	m.rec.SetSession("", "")
}

// Disconnect cancels a pending reconnect and closes the session. The
// manager stays usable.
func (m *Manager) Disconnect() {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	m.teardown(StateDisconnected, "disconnect")
}

// Close disconnects and stops the event loop. A dial in progress is
// cancelled. Further Connect calls return ErrClosed.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.cancel()

		m.connMu.Lock()
		m.teardown(StateClosed, "close")
		close(m.stop)
		m.connMu.Unlock()
	})
	<-m.loopDone
	return nil
}

// teardown stops the timer and retires the session. connMu must be held.
func (m *Manager) teardown(next State, reason string) {
	m.mu.Lock()
	m.stopTimerLocked()
	s := m.sess
	m.sess = nil
	m.mu.Unlock()

	if s != nil {
		m.retire(s)
	}
	m.setState(next, reason)
}

func (m *Manager) setState(next State, reason string) {
	m.mu.Lock()
	prev := m.state
	if prev == next || prev == StateClosed {
		m.mu.Unlock()
		return
	}
	m.state = next
	cb := m.onStateChange
	m.mu.Unlock()

	m.rec.State(prev.String(), next.String(), reason)
	m.logger.Debug("connection state", "from", prev, "to", next)
	if cb != nil {
		cb(prev, next)
	}
}

func (m *Manager) current(s *session) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess == s
}
