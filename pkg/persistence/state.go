package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/soxlink/soxlink-go/pkg/node"
	"gopkg.in/yaml.v3"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// State is the persisted form of the tree below the root.
type State struct {
	// Version is the state file format version.
	Version int `yaml:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `yaml:"savedAt"`

	Nodes []NodeState `yaml:"nodes,omitempty"`
}

// NodeState is one persisted node.
type NodeState struct {
	Name     string         `yaml:"name"`
	Value    any            `yaml:"value,omitempty"`
	RoConfig map[string]any `yaml:"roConfig,omitempty"`
	Password string         `yaml:"password,omitempty"`
	Children []NodeState    `yaml:"children,omitempty"`
}

// TreeStore manages persistence of the tree to a YAML file.
type TreeStore struct {
	mu   sync.Mutex
	path string
}

// NewTreeStore creates a store writing to path.
func NewTreeStore(path string) *TreeStore {
	return &TreeStore{path: path}
}

// Path returns the state file path.
func (s *TreeStore) Path() string { return s.path }

// Save persists the serializable children of root.
func (s *TreeStore) Save(root *node.Node) error {
	state := Snapshot(root)

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}

	// Replace atomically.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *TreeStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &State{}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%s: unsupported state version %d", s.path, state.Version)
	}
	return state, nil
}

// Restore loads the state file and recreates its nodes below root. A
// missing file restores nothing.
func (s *TreeStore) Restore(root *node.Node) error {
	state, err := s.Load()
	if err != nil || state == nil {
		return err
	}
	Apply(root, state)
	return nil
}

// Clear removes the state file.
func (s *TreeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Snapshot captures the serializable, non-action children of root.
func Snapshot(root *node.Node) *State {
	return &State{Nodes: snapshotChildren(root)}
}

func snapshotChildren(n *node.Node) []NodeState {
	var out []NodeState
	for _, child := range n.Children() {
		if !child.Serializable() || child.Action() != nil {
			continue
		}
		ns := NodeState{
			Name:     child.Name(),
			Children: snapshotChildren(child),
		}
		if child.HasValue() && !child.Value().IsNull() {
			ns.Value = child.Value().Interface()
		}
		if cfg := child.RoConfigs(); len(cfg) > 0 {
			ns.RoConfig = make(map[string]any, len(cfg))
			for k, v := range cfg {
				ns.RoConfig[k] = v.Interface()
			}
		}
		if p, ok := child.Password(); ok {
			ns.Password = p
		}
		out = append(out, ns)
	}
	return out
}

// Apply recreates state's nodes below root. Existing nodes are updated in
// place.
func Apply(root *node.Node, state *State) {
	applyChildren(root, state.Nodes)
}

func applyChildren(parent *node.Node, nodes []NodeState) {
	for _, ns := range nodes {
		n, _ := parent.CreateChild(ns.Name)
		keys := make([]string, 0, len(ns.RoConfig))
		for k := range ns.RoConfig {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.SetRoConfig(k, node.FromInterface(ns.RoConfig[k]))
		}
		if ns.Password != "" {
			n.SetPassword(ns.Password)
		}
		if ns.Value != nil {
			n.SetValue(node.FromInterface(ns.Value))
		}
		applyChildren(n, ns.Children)
	}
}
