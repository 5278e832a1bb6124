// Package node implements the bridge's published data tree.
//
// A Tree holds Nodes addressed by slash-separated paths. Nodes carry a typed
// Value, read-only configuration entries, an optional write-only password and
// an optional Action. External writes go through Node.Write, which runs the
// node's ValueHandler before the value is stored. Observers subscribe through
// the tree's SubscriptionManager; per-node hooks report when a node gains its
// first subscriber or loses its last.
//
// A gateway transport adapter sits on top of this package and maps its
// list, subscribe, set and invoke requests onto Tree.
package node
