package simulator

import (
	"context"
	"fmt"
	"sync"

	"github.com/soxlink/soxlink-go/pkg/sox"
)

// Session is one client session to a Device.
type Session struct {
	dev  *Device
	done chan struct{}

	mu     sync.Mutex
	app    *sox.Component
	closed bool
}

func (s *Session) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// LoadApp returns the session's copy of the application tree, fetching it
// on first use.
func (s *Session) LoadApp(ctx context.Context) (*sox.Component, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.dev.mu.Lock()
	s.dev.counts.LoadApps++
	s.dev.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.app == nil {
		s.app = s.dev.root.Clone()
	}
	return s.app, nil
}

// Write updates a property slot on the device.
func (s *Session) Write(ctx context.Context, c *sox.Component, slot string, v sox.Value) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	path := c.Path()
	s.dev.mu.Lock()
	s.dev.counts.Writes++
	werr := s.dev.writeErrs[path+"."+slot]
	s.dev.mu.Unlock()
	if werr != nil {
		return werr
	}

	sl, ok := c.Type().Slot(slot)
	if !ok || sl.IsAction() {
		return fmt.Errorf("%w: %s.%s", ErrNoSuchSlot, path, slot)
	}
	if sl.ReadOnly() {
		return fmt.Errorf("%w: %s.%s", ErrReadOnlySlot, path, slot)
	}
	if v.TypeID() != sl.Type {
		return fmt.Errorf("slot %s.%s is %s, got %s", path, slot, sl.Type, v.TypeID())
	}
	return s.dev.Update(path, slot, v)
}

// Invoke records an action call.
func (s *Session) Invoke(ctx context.Context, c *sox.Component, slot string, v sox.Value) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	sl, ok := c.Type().Slot(slot)
	if !ok || !sl.IsAction() {
		return fmt.Errorf("%w: action %s.%s", ErrNoSuchSlot, c.Path(), slot)
	}
	inv := Invocation{Path: c.Path(), Slot: slot, Value: v}

	s.dev.mu.Lock()
	s.dev.counts.Invokes++
	s.dev.invocations = append(s.dev.invocations, inv)
	fn := s.dev.onInvoke
	s.dev.mu.Unlock()

	if fn != nil {
		fn(inv)
	}
	return nil
}

// Subscribe adds mask to the component's subscription.
func (s *Session) Subscribe(ctx context.Context, c *sox.Component, mask sox.SubscriptionMask) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.dev.mu.Lock()
	s.dev.counts.Subscribes++
	err := s.dev.subErr
	s.dev.mu.Unlock()
	if err != nil {
		return err
	}
	c.SetSubscription(c.Subscription() | mask)
	return nil
}

// Unsubscribe removes mask from the component's subscription.
func (s *Session) Unsubscribe(ctx context.Context, c *sox.Component, mask sox.SubscriptionMask) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.dev.mu.Lock()
	s.dev.counts.Unsubscribes++
	s.dev.mu.Unlock()
	c.SetSubscription(c.Subscription() &^ mask)
	return nil
}

// SubscribeToAllTreeEvents enables structural notifications.
func (s *Session) SubscribeToAllTreeEvents(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.dev.mu.Lock()
	s.dev.counts.TreeEvents++
	s.dev.mu.Unlock()
	return nil
}

// ReadVersion returns the device's version information.
func (s *Session) ReadVersion(ctx context.Context) (*sox.VersionInfo, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	v := s.dev.version
	v.Kits = append([]sox.KitVersion(nil), v.Kits...)
	return &v, nil
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close ends the session.
func (s *Session) Close() error {
	s.dev.remove(s)
	s.close()
	return nil
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// apply mirrors a device-side change into the session copy and notifies the
// component listener if the session subscribed to the changed category.
func (s *Session) apply(path, slot string, v sox.Value, mask sox.SubscriptionMask) {
	s.mu.Lock()
	app, closed := s.app, s.closed
	s.mu.Unlock()
	if app == nil || closed {
		return
	}
	c, ok := app.Find(path)
	if !ok {
		return
	}
	c.Set(slot, v)
	if c.Subscription()&mask != 0 {
		c.Changed(mask)
	}
}

var _ sox.Client = (*Session)(nil)
