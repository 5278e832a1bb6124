package node

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
)

var (
	ErrNotFound      = errors.New("node not found")
	ErrNotWritable   = errors.New("node not writable")
	ErrNotAction     = errors.New("node has no action")
	ErrWriteRejected = errors.New("write rejected")
	ErrTypeMismatch  = errors.New("value type mismatch")
	ErrMissingParam  = errors.New("missing action parameter")
)

// Writable is the permission level needed to write a node's value.
type Writable uint8

const (
	WriteNever Writable = iota
	WriteAllowed
	WriteConfig
)

// String returns the permission name.
func (w Writable) String() string {
	switch w {
	case WriteNever:
		return "never"
	case WriteAllowed:
		return "write"
	case WriteConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ValuePair carries a proposed write.
type ValuePair struct {
	Node *Node
	Old  Value
	New  Value
}

// ValueHandler is called before an external write is applied. A non-nil
// error rejects the write and leaves the value unchanged.
type ValueHandler func(ctx context.Context, p ValuePair) error

// Node is one element of the tree. All methods are safe for concurrent use.
type Node struct {
	name string
	subs *SubscriptionManager

	mu           sync.RWMutex
	parent       *Node
	children     []*Node
	index        map[string]*Node
	typ          ValueType
	value        Value
	hasValue     bool
	writable     Writable
	handler      ValueHandler
	roConfig     map[string]Value
	password     string
	hasPassword  bool
	action       *Action
	serializable bool
	onSubscribe  func(*Node)
	onUnsub      func(*Node)
}

func newNode(name string, parent *Node, subs *SubscriptionManager) *Node {
	return &Node{
		name:         name,
		subs:         subs,
		parent:       parent,
		index:        make(map[string]*Node),
		typ:          Dynamic,
		serializable: true,
	}
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, nil for the root or a removed node.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Path returns the slash-separated path from the root.
func (n *Node) Path() string {
	var names []string
	for c := n; c.Parent() != nil; c = c.Parent() {
		names = append(names, c.name)
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

// CreateChild returns the named child, creating it if needed. created
// reports whether a new node was made.
func (n *Node) CreateChild(name string) (child *Node, created bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.index[name]; ok {
		return c, false
	}
	c := newNode(name, n, n.subs)
	n.children = append(n.children, c)
	n.index[name] = c
	return c, true
}

// Child returns the named child or nil.
func (n *Node) Child(name string) *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index[name]
}

// Children returns the children in creation order.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// RemoveChild detaches the named child and drops every subscription in its
// subtree. It reports whether the child existed.
func (n *Node) RemoveChild(name string) bool {
	n.mu.Lock()
	c, ok := n.index[name]
	if ok {
		delete(n.index, name)
		for i, e := range n.children {
			if e == c {
				n.children = append(n.children[:i], n.children[i+1:]...)
				break
			}
		}
	}
	n.mu.Unlock()
	if !ok {
		return false
	}

	c.mu.Lock()
	c.parent = nil
	c.mu.Unlock()
	if n.subs != nil {
		c.Walk(func(d *Node) bool {
			n.subs.forget(d)
			return true
		})
	}
	return true
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// SetValueType declares the node's value type.
func (n *Node) SetValueType(t ValueType) {
	n.mu.Lock()
	n.typ = t
	n.mu.Unlock()
}

// ValueType returns the declared value type.
func (n *Node) ValueType() ValueType {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.typ
}

// SetValue stores v and notifies subscribers when it differs from the
// current value.
func (n *Node) SetValue(v Value) {
	n.mu.Lock()
	changed := !n.hasValue || !n.value.Equal(v)
	n.value = v
	n.hasValue = true
	n.mu.Unlock()

	if changed && n.subs != nil {
		n.subs.notify(n, v)
	}
}

// Value returns the current value.
func (n *Node) Value() Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

// HasValue reports whether a value was ever set.
func (n *Node) HasValue() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.hasValue
}

// SetWritable sets the write permission.
func (n *Node) SetWritable(w Writable) {
	n.mu.Lock()
	n.writable = w
	n.mu.Unlock()
}

// Writable returns the write permission.
func (n *Node) Writable() Writable {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.writable
}

// SetValueHandler installs the write handler, replacing any previous one.
func (n *Node) SetValueHandler(h ValueHandler) {
	n.mu.Lock()
	n.handler = h
	n.mu.Unlock()
}

// Write applies an external write: the value is type-checked, passed to the
// handler, and stored only when the handler accepts it.
func (n *Node) Write(ctx context.Context, v Value) error {
	n.mu.RLock()
	w, typ, h, old := n.writable, n.typ, n.handler, n.value
	n.mu.RUnlock()

	if w == WriteNever {
		return fmt.Errorf("%w: %s", ErrNotWritable, n.Path())
	}
	if !typ.Accepts(v) {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrTypeMismatch, n.Path(), typ, v.Kind())
	}
	if h != nil {
		if err := h(ctx, ValuePair{Node: n, Old: old, New: v}); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteRejected, err)
		}
	}
	n.SetValue(v)
	return nil
}

// SetRoConfig sets a read-only configuration entry.
func (n *Node) SetRoConfig(name string, v Value) {
	n.mu.Lock()
	if n.roConfig == nil {
		n.roConfig = make(map[string]Value)
	}
	n.roConfig[name] = v
	n.mu.Unlock()
}

// RoConfig returns a read-only configuration entry.
func (n *Node) RoConfig(name string) (Value, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.roConfig[name]
	return v, ok
}

// RoConfigs returns a copy of all read-only configuration entries.
func (n *Node) RoConfigs() map[string]Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return maps.Clone(n.roConfig)
}

// SetPassword stores a write-only secret. It is never exposed to subscribers
// or listings, only to in-process code and the persistence layer.
func (n *Node) SetPassword(p string) {
	n.mu.Lock()
	n.password = p
	n.hasPassword = true
	n.mu.Unlock()
}

// Password returns the stored secret.
func (n *Node) Password() (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.password, n.hasPassword
}

// SetAction makes n invokable. A nil action clears it.
func (n *Node) SetAction(a *Action) {
	n.mu.Lock()
	n.action = a
	n.mu.Unlock()
}

// Action returns the node's action, or nil.
func (n *Node) Action() *Action {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.action
}

// SetSerializable controls whether the node (and its subtree) is persisted.
func (n *Node) SetSerializable(s bool) {
	n.mu.Lock()
	n.serializable = s
	n.mu.Unlock()
}

// Serializable reports whether the node is persisted.
func (n *Node) Serializable() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.serializable
}

// SetSubscriptionHooks installs callbacks run when the node gains its first
// subscriber and loses its last one. Either may be nil.
func (n *Node) SetSubscriptionHooks(onSubscribe, onUnsubscribe func(*Node)) {
	n.mu.Lock()
	n.onSubscribe = onSubscribe
	n.onUnsub = onUnsubscribe
	n.mu.Unlock()
}

func (n *Node) hooks() (func(*Node), func(*Node)) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.onSubscribe, n.onUnsub
}
