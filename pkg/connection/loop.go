package connection

import (
	"github.com/soxlink/soxlink-go/pkg/mirror"
	"github.com/soxlink/soxlink-go/pkg/sox"
)

type eventKind uint8

const (
	eventBuildRoot eventKind = iota
	eventComponentChanged
	eventObserverAttached
	eventObserverDetached
)

type event struct {
	kind eventKind
	sess *session
	comp *sox.Component
	mask sox.SubscriptionMask
}

// post enqueues ev without blocking. It reports whether there was room.
func (m *Manager) post(ev event) bool {
	select {
	case m.events <- ev:
		return true
	default:
		return false
	}
}

// postWait enqueues ev, waiting for room unless the loop has stopped.
func (m *Manager) postWait(ev event) {
	select {
	case m.events <- ev:
	case <-m.stop:
	}
}

func (m *Manager) loop() {
	defer close(m.loopDone)
	for {
		select {
		case <-m.stop:
			return
		case ev := <-m.events:
			m.handle(ev)
		}
	}
}

func (m *Manager) handle(ev event) {
	s := ev.sess
	if !m.current(s) {
		return
	}
	ctx := m.ctx

	switch ev.kind {
	case eventBuildRoot:
		if err := s.builder.Build(ctx, m.node, s.app); err != nil {
			m.logger.Error("tree build failed", "error", err)
			m.rec.Error(err, "build")
		}
		if err := s.mux.Resync(ctx); err != nil {
			m.logger.Warn("resubscribe failed", "error", err)
		}
	case eventComponentChanged:
		m.rec.Notification(ev.comp.Path(), uint8(ev.mask), false)
		if err := s.builder.Refresh(ctx, ev.comp, ev.mask); err != nil {
			m.logger.Error("tree refresh failed", "component", ev.comp.Path(), "error", err)
			m.rec.Error(err, "refresh")
		}
	case eventObserverAttached:
		_ = s.mux.Attach(ctx, ev.comp)
	case eventObserverDetached:
		_ = s.mux.Detach(ctx, ev.comp)
	}
}

// ComponentChanged is called from the client's notification path. It never
// blocks: when the queue is full the change is dropped.
func (s *session) ComponentChanged(c *sox.Component, mask sox.SubscriptionMask) {
	if s.m.post(event{kind: eventComponentChanged, sess: s, comp: c, mask: mask}) {
		return
	}
	s.m.logger.Warn("event queue full, dropping change", "component", c.Path(), "mask", mask)
	s.m.rec.Notification(c.Path(), uint8(mask), true)
}

func (s *session) ObserverAttached(c *sox.Component) {
	s.m.postWait(event{kind: eventObserverAttached, sess: s, comp: c})
}

func (s *session) ObserverDetached(c *sox.Component) {
	s.m.postWait(event{kind: eventObserverDetached, sess: s, comp: c})
}

var _ mirror.Sink = (*session)(nil)
