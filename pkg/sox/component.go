package sox

import (
	"strings"
	"sync"
)

// SubscriptionMask selects which categories of a component's state a
// subscription covers.
type SubscriptionMask uint8

const (
	MaskTree    SubscriptionMask = 0x01
	MaskConfig  SubscriptionMask = 0x02
	MaskRuntime SubscriptionMask = 0x04
	MaskLinks   SubscriptionMask = 0x08
)

// Has reports whether every bit of o is set in m.
func (m SubscriptionMask) Has(o SubscriptionMask) bool {
	return m&o == o
}

// String lists the set categories, e.g. "config|runtime".
func (m SubscriptionMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, b := range []struct {
		bit  SubscriptionMask
		name string
	}{{MaskTree, "tree"}, {MaskConfig, "config"}, {MaskRuntime, "runtime"}, {MaskLinks, "links"}} {
		if m&b.bit != 0 {
			parts = append(parts, b.name)
		}
	}
	return strings.Join(parts, "|")
}

// Facets are the per-slot metadata attached by the device's kit manifest.
type Facets map[string]any

// Bool returns the named facet as a bool, or def when absent or not a bool.
func (f Facets) Bool(name string, def bool) bool {
	if v, ok := f[name].(bool); ok {
		return v
	}
	return def
}

// String returns the named facet as a string.
func (f Facets) String(name string) (string, bool) {
	v, ok := f[name].(string)
	return v, ok
}

// SlotKind distinguishes properties from actions.
type SlotKind uint8

const (
	SlotProperty SlotKind = iota
	SlotAction
)

// Slot describes one named member of a component type.
type Slot struct {
	ID     uint8
	Name   string
	Type   TypeID
	Kind   SlotKind
	Facets Facets
}

// IsAction reports whether the slot is an action.
func (s Slot) IsAction() bool { return s.Kind == SlotAction }

// ReadOnly reports the slot's "readonly" facet.
func (s Slot) ReadOnly() bool { return s.Facets.Bool("readonly", false) }

// Range returns the slot's "range" facet, if present.
func (s Slot) Range() (string, bool) { return s.Facets.String("range") }

// Type is a component type: its qualified name and ordered slots.
type Type struct {
	QName string
	Slots []Slot
}

// Slot looks up a slot by name.
func (t *Type) Slot(name string) (Slot, bool) {
	for _, s := range t.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Listener receives change notifications for a component.
type Listener func(c *Component, mask SubscriptionMask)

// Component is a remote component as held by a client session. Values and
// subscription state are updated by the transport; readers see them through
// the accessor methods.
type Component struct {
	id   uint16
	name string
	typ  *Type

	mu       sync.RWMutex
	parent   *Component
	children []*Component
	values   map[string]Value
	sub      SubscriptionMask
	listener Listener
}

// NewComponent creates a detached component.
func NewComponent(id uint16, name string, typ *Type) *Component {
	if typ == nil {
		typ = &Type{}
	}
	return &Component{
		id:     id,
		name:   name,
		typ:    typ,
		values: make(map[string]Value),
	}
}

// ID returns the component ID.
func (c *Component) ID() uint16 { return c.id }

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Type returns the component type.
func (c *Component) Type() *Type { return c.typ }

// AddChild attaches child under c.
func (c *Component) AddChild(child *Component) {
	child.mu.Lock()
	child.parent = c
	child.mu.Unlock()

	c.mu.Lock()
	c.children = append(c.children, child)
	c.mu.Unlock()
}

// Parent returns the parent, or nil for the app root.
func (c *Component) Parent() *Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parent
}

// Children returns a snapshot of the child list.
func (c *Component) Children() []*Component {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Component, len(c.children))
	copy(out, c.children)
	return out
}

// Path returns the slash-separated path from the app root, "/" for the root.
func (c *Component) Path() string {
	var names []string
	for n := c; n.Parent() != nil; n = n.Parent() {
		names = append(names, n.name)
	}
	if len(names) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(names[i])
	}
	return b.String()
}

// Get returns the current value of the named slot.
func (c *Component) Get(slot string) (Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[slot]
	return v, ok
}

// Set stores a slot value without notifying the listener.
func (c *Component) Set(slot string, v Value) {
	c.mu.Lock()
	c.values[slot] = v
	c.mu.Unlock()
}

// Subscription returns the categories the session is subscribed to.
func (c *Component) Subscription() SubscriptionMask {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sub
}

// SetSubscription records the session's subscription mask.
func (c *Component) SetSubscription(m SubscriptionMask) {
	c.mu.Lock()
	c.sub = m
	c.mu.Unlock()
}

// SetListener installs l unless a listener is already present. It reports
// whether l was installed.
func (c *Component) SetListener(l Listener) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener != nil {
		return false
	}
	c.listener = l
	return true
}

// HasListener reports whether a listener is installed.
func (c *Component) HasListener() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listener != nil
}

// Changed notifies the listener, if any, that the masked state changed.
func (c *Component) Changed(mask SubscriptionMask) {
	c.mu.RLock()
	l := c.listener
	c.mu.RUnlock()
	if l != nil {
		l(c, mask)
	}
}

// Clone deep-copies the subtree rooted at c. Values are copied; listeners
// and subscription state are not. The clone's root has no parent.
func (c *Component) Clone() *Component {
	c.mu.RLock()
	out := NewComponent(c.id, c.name, c.typ)
	for k, v := range c.values {
		if b, ok := v.(Buf); ok {
			v = append(Buf(nil), b...)
		}
		out.values[k] = v
	}
	children := make([]*Component, len(c.children))
	copy(children, c.children)
	c.mu.RUnlock()

	for _, ch := range children {
		out.AddChild(ch.Clone())
	}
	return out
}

// Find walks the subtree for the component at path (as returned by Path).
func (c *Component) Find(path string) (*Component, bool) {
	path = strings.Trim(path, "/")
	if path == "" {
		return c, true
	}
	cur := c
	for _, name := range strings.Split(path, "/") {
		var next *Component
		for _, ch := range cur.Children() {
			if ch.name == name {
				next = ch
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
