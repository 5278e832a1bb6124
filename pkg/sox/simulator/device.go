// Package simulator provides an in-memory SOX device.
//
// A Device holds a master component tree. Each dialed Session gets its own
// copy of the tree on LoadApp, like a real client holding cached component
// state. Update changes a value on the device and notifies every session
// that is subscribed to the component.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soxlink/soxlink-go/pkg/sox"
)

var (
	ErrUnreachable    = errors.New("device unreachable")
	ErrAuthFailed     = errors.New("authentication failed")
	ErrSessionClosed  = errors.New("session closed")
	ErrNoSuchSlot     = errors.New("no such slot")
	ErrReadOnlySlot   = errors.New("slot is read-only")
	ErrNoSuchPath     = errors.New("no such component")
	ErrUnknownAddress = errors.New("no device at address")
)

// Counts tallies the calls a device has served.
type Counts struct {
	Dials        int
	LoadApps     int
	Writes       int
	Invokes      int
	Subscribes   int
	Unsubscribes int
	TreeEvents   int
}

// Invocation records one action call.
type Invocation struct {
	Path  string
	Slot  string
	Value sox.Value
}

// Device is a simulated SOX device. It implements sox.Dialer.
type Device struct {
	mu          sync.Mutex
	name        string
	root        *sox.Component
	version     sox.VersionInfo
	username    string
	password    string
	reachable   bool
	sessions    []*Session
	counts      Counts
	invocations []Invocation
	writeErrs   map[string]error
	subErr      error
	onInvoke    func(Invocation)
}

// NewDevice creates a reachable device serving root.
func NewDevice(name string, root *sox.Component) *Device {
	return &Device{
		name:      name,
		root:      root,
		reachable: true,
		version:   sox.VersionInfo{PlatformID: "soxlink-sim"},
		writeErrs: make(map[string]error),
	}
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Root returns the master component tree.
func (d *Device) Root() *sox.Component { return d.root }

// SetCredentials requires username and password on Dial. Empty values
// accept any credentials.
func (d *Device) SetCredentials(username, password string) {
	d.mu.Lock()
	d.username, d.password = username, password
	d.mu.Unlock()
}

// SetVersion sets the reported version information.
func (d *Device) SetVersion(v sox.VersionInfo) {
	d.mu.Lock()
	d.version = v
	d.mu.Unlock()
}

// SetReachable controls whether Dial succeeds.
func (d *Device) SetReachable(ok bool) {
	d.mu.Lock()
	d.reachable = ok
	d.mu.Unlock()
}

// FailWrites makes writes to path/slot fail with err. A nil err clears it.
func (d *Device) FailWrites(path, slot string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := path + "." + slot
	if err == nil {
		delete(d.writeErrs, key)
		return
	}
	d.writeErrs[key] = err
}

// FailSubscribes makes Subscribe fail with err. A nil err clears it.
func (d *Device) FailSubscribes(err error) {
	d.mu.Lock()
	d.subErr = err
	d.mu.Unlock()
}

// OnInvoke registers a callback run for every action invocation.
func (d *Device) OnInvoke(fn func(Invocation)) {
	d.mu.Lock()
	d.onInvoke = fn
	d.mu.Unlock()
}

// Counts returns the call tallies.
func (d *Device) Counts() Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts
}

// Invocations returns the recorded action calls.
func (d *Device) Invocations() []Invocation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Invocation, len(d.invocations))
	copy(out, d.invocations)
	return out
}

// Sessions returns the number of open sessions.
func (d *Device) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Dial opens a session.
func (d *Device) Dial(ctx context.Context, creds sox.Credentials) (sox.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.counts.Dials++
	if !d.reachable {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, creds.HostPort())
	}
	if d.username != "" && (creds.Username != d.username || creds.Password != d.password) {
		return nil, ErrAuthFailed
	}
	s := &Session{dev: d, done: make(chan struct{})}
	d.sessions = append(d.sessions, s)
	return s, nil
}

// Update sets a slot value on the device and notifies subscribed sessions.
func (d *Device) Update(path, slot string, v sox.Value) error {
	c, ok := d.root.Find(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchPath, path)
	}
	s, ok := c.Type().Slot(slot)
	if !ok || s.IsAction() {
		return fmt.Errorf("%w: %s.%s", ErrNoSuchSlot, path, slot)
	}
	c.Set(slot, v)

	d.mu.Lock()
	sessions := make([]*Session, len(d.sessions))
	copy(sessions, d.sessions)
	d.mu.Unlock()

	mask := sox.MaskRuntime
	if !s.ReadOnly() {
		mask = sox.MaskConfig
	}
	for _, sess := range sessions {
		sess.apply(path, slot, v, mask)
	}
	return nil
}

// Drop closes every open session, as if the network went away.
func (d *Device) Drop() {
	d.mu.Lock()
	sessions := d.sessions
	d.sessions = nil
	d.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

func (d *Device) remove(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.sessions {
		if e == s {
			d.sessions = append(d.sessions[:i], d.sessions[i+1:]...)
			return
		}
	}
}

var _ sox.Dialer = (*Device)(nil)
