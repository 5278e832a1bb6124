package node

import "sync"

// SubscriptionID identifies one value subscription.
type SubscriptionID uint64

// Update is delivered to subscribers when a node value changes.
type Update struct {
	Node  *Node
	Value Value
}

// SubscriptionManager tracks value subscriptions across a tree. The first
// subscription on a node runs its subscribe hook, removing the last one runs
// its unsubscribe hook. Hooks run on the caller's goroutine, outside any
// manager lock.
type SubscriptionManager struct {
	mu     sync.RWMutex
	nextID SubscriptionID
	owners map[SubscriptionID]*Node
	byNode map[*Node]map[SubscriptionID]func(Update)
}

// NewSubscriptionManager creates an empty manager.
func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		owners: make(map[SubscriptionID]*Node),
		byNode: make(map[*Node]map[SubscriptionID]func(Update)),
	}
}

// Subscribe registers fn for value changes on n. If n already has a value it
// is delivered immediately.
func (m *SubscriptionManager) Subscribe(n *Node, fn func(Update)) SubscriptionID {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	set := m.byNode[n]
	first := len(set) == 0
	if set == nil {
		set = make(map[SubscriptionID]func(Update))
		m.byNode[n] = set
	}
	set[id] = fn
	m.owners[id] = n
	m.mu.Unlock()

	if first {
		if on, _ := n.hooks(); on != nil {
			on(n)
		}
	}
	if n.HasValue() && fn != nil {
		fn(Update{Node: n, Value: n.Value()})
	}
	return id
}

// Unsubscribe removes a subscription. It reports whether id was active.
func (m *SubscriptionManager) Unsubscribe(id SubscriptionID) bool {
	m.mu.Lock()
	n, ok := m.owners[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.owners, id)
	set := m.byNode[n]
	delete(set, id)
	last := len(set) == 0
	if last {
		delete(m.byNode, n)
	}
	m.mu.Unlock()

	if last {
		if _, off := n.hooks(); off != nil {
			off(n)
		}
	}
	return true
}

// HasValueSub reports whether n has at least one value subscription.
func (m *SubscriptionManager) HasValueSub(n *Node) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byNode[n]) > 0
}

// Count returns the number of subscriptions on n.
func (m *SubscriptionManager) Count(n *Node) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byNode[n])
}

func (m *SubscriptionManager) notify(n *Node, v Value) {
	m.mu.RLock()
	fns := make([]func(Update), 0, len(m.byNode[n]))
	for _, fn := range m.byNode[n] {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(Update{Node: n, Value: v})
	}
}

// forget drops n's subscriptions without running hooks.
func (m *SubscriptionManager) forget(n *Node) {
	m.mu.Lock()
	for id := range m.byNode[n] {
		delete(m.owners, id)
	}
	delete(m.byNode, n)
	m.mu.Unlock()
}
