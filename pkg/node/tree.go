package node

import (
	"context"
	"fmt"
	"strings"
)

// Tree is a rooted node hierarchy with a shared subscription manager.
type Tree struct {
	root *Node
	subs *SubscriptionManager
}

// NewTree creates a tree with an empty root.
func NewTree() *Tree {
	subs := NewSubscriptionManager()
	return &Tree{root: newNode("", nil, subs), subs: subs}
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Subscriptions returns the tree's subscription manager.
func (t *Tree) Subscriptions() *SubscriptionManager { return t.subs }

// Get resolves a slash-separated path.
func (t *Tree) Get(path string) (*Node, error) {
	path = strings.Trim(path, "/")
	n := t.root
	if path == "" {
		return n, nil
	}
	for _, name := range strings.Split(path, "/") {
		n = n.Child(name)
		if n == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, "/"+path)
		}
	}
	return n, nil
}

// Write performs an external write on the node at path.
func (t *Tree) Write(ctx context.Context, path string, v Value) error {
	n, err := t.Get(path)
	if err != nil {
		return err
	}
	return n.Write(ctx, v)
}

// Invoke runs the action at path with the given parameters.
func (t *Tree) Invoke(ctx context.Context, path string, params map[string]Value) (*Table, error) {
	n, err := t.Get(path)
	if err != nil {
		return nil, err
	}
	a := n.Action()
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAction, n.Path())
	}
	if err := a.validate(params); err != nil {
		return nil, err
	}
	req := &ActionRequest{
		Node:   n,
		Params: params,
		Table:  &Table{Columns: a.Results},
	}
	if a.Handler != nil {
		if err := a.Handler(ctx, req); err != nil {
			return nil, err
		}
	}
	return req.Table, nil
}

// Subscribe subscribes to value changes at path.
func (t *Tree) Subscribe(path string, fn func(Update)) (SubscriptionID, error) {
	n, err := t.Get(path)
	if err != nil {
		return 0, err
	}
	return t.subs.Subscribe(n, fn), nil
}
