package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endpointTree() *node.Tree {
	tree := node.NewTree()
	ep, _ := tree.Root().CreateChild("plant1")
	ep.SetRoConfig("url", node.NewString("10.0.0.5"))
	ep.SetRoConfig("port", node.NewInt(1876))
	ep.SetRoConfig("username", node.NewString("admin"))
	ep.SetPassword("secret")

	// Runtime-only parts.
	app, _ := ep.CreateChild("app")
	app.SetSerializable(false)
	speed, _ := app.CreateChild("speed")
	speed.SetValue(node.NewNumber(12.5))
	version, _ := ep.CreateChild("version")
	version.SetAction(&node.Action{})
	add, _ := tree.Root().CreateChild("addServer")
	add.SetAction(&node.Action{})

	note, _ := ep.CreateChild("note")
	note.SetValue(node.NewString("north hall"))
	return tree
}

func TestTreeStore(t *testing.T) {
	t.Run("SaveAndRestore", func(t *testing.T) {
		store := NewTreeStore(filepath.Join(t.TempDir(), "state", "tree.yaml"))
		require.NoError(t, store.Save(endpointTree().Root()))

		tree := node.NewTree()
		require.NoError(t, store.Restore(tree.Root()))

		ep := tree.Root().Child("plant1")
		require.NotNil(t, ep)
		url, ok := ep.RoConfig("url")
		require.True(t, ok)
		assert.Equal(t, "10.0.0.5", url.String())
		port, _ := ep.RoConfig("port")
		assert.True(t, port.Equal(node.NewInt(1876)))
		p, ok := ep.Password()
		assert.True(t, ok)
		assert.Equal(t, "secret", p)
		assert.Equal(t, "north hall", ep.Child("note").Value().String())

		assert.Nil(t, ep.Child("app"), "non-serializable nodes are not persisted")
		assert.Nil(t, ep.Child("version"), "actions are not persisted")
		assert.Nil(t, tree.Root().Child("addServer"))
	})

	t.Run("FileMode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tree.yaml")
		store := NewTreeStore(path)
		require.NoError(t, store.Save(endpointTree().Root()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		store := NewTreeStore(filepath.Join(t.TempDir(), "missing.yaml"))
		got, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, got)

		tree := node.NewTree()
		require.NoError(t, store.Restore(tree.Root()))
		assert.Empty(t, tree.Root().Children())
	})

	t.Run("LoadVersion", func(t *testing.T) {
		store := NewTreeStore(filepath.Join(t.TempDir(), "tree.yaml"))
		require.NoError(t, store.Save(node.NewTree().Root()))
		got, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, StateVersion, got.Version)
		assert.False(t, got.SavedAt.IsZero())
	})

	t.Run("RejectsFutureVersion", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tree.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 99\n"), 0600))
		_, err := NewTreeStore(path).Load()
		assert.Error(t, err)
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tree.yaml")
		require.NoError(t, os.WriteFile(path, []byte("nodes: [\n"), 0600))
		_, err := NewTreeStore(path).Load()
		assert.Error(t, err)
	})

	t.Run("RemovedEndpointIsGoneAfterSave", func(t *testing.T) {
		store := NewTreeStore(filepath.Join(t.TempDir(), "tree.yaml"))
		tree := endpointTree()
		require.NoError(t, store.Save(tree.Root()))

		tree.Root().RemoveChild("plant1")
		require.NoError(t, store.Save(tree.Root()))

		got, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, got.Nodes)
	})

	t.Run("Clear", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tree.yaml")
		store := NewTreeStore(path)
		require.NoError(t, store.Save(endpointTree().Root()))
		require.NoError(t, store.Clear())
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
		assert.NoError(t, store.Clear())
	})
}

func TestSnapshotSkipsRuntimeNodes(t *testing.T) {
	state := Snapshot(endpointTree().Root())
	require.Len(t, state.Nodes, 1)
	ep := state.Nodes[0]
	assert.Equal(t, "plant1", ep.Name)
	require.Len(t, ep.Children, 1)
	assert.Equal(t, "note", ep.Children[0].Name)
	assert.Equal(t, "secret", ep.Password)
	assert.Equal(t, int64(1876), ep.RoConfig["port"])
}
