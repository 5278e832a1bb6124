package node

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChildGetOrCreate(t *testing.T) {
	tree := NewTree()
	a, created := tree.Root().CreateChild("a")
	assert.True(t, created)
	again, created := tree.Root().CreateChild("a")
	assert.False(t, created)
	assert.Same(t, a, again)

	b, _ := a.CreateChild("b")
	assert.Equal(t, "/a/b", b.Path())
	assert.Equal(t, "/", tree.Root().Path())

	got, err := tree.Get("/a/b")
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = tree.Get("/a/x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChildrenKeepOrder(t *testing.T) {
	root := NewTree().Root()
	for _, name := range []string{"z", "a", "m"} {
		root.CreateChild(name)
	}
	var names []string
	for _, c := range root.Children() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestRemoveChildDropsSubscriptions(t *testing.T) {
	tree := NewTree()
	a, _ := tree.Root().CreateChild("a")
	b, _ := a.CreateChild("b")
	unsubHooks := 0
	b.SetSubscriptionHooks(nil, func(*Node) { unsubHooks++ })
	id := tree.Subscriptions().Subscribe(b, nil)

	assert.True(t, tree.Root().RemoveChild("a"))
	assert.False(t, tree.Root().RemoveChild("a"))
	assert.Nil(t, a.Parent())
	assert.False(t, tree.Subscriptions().HasValueSub(b))
	assert.False(t, tree.Subscriptions().Unsubscribe(id))
	assert.Zero(t, unsubHooks)
}

func TestWriteRunsHandler(t *testing.T) {
	ctx := context.Background()
	n, _ := NewTree().Root().CreateChild("sp")
	n.SetValueType(Number)
	n.SetValue(NewInt(1))

	t.Run("not writable", func(t *testing.T) {
		err := n.Write(ctx, NewInt(2))
		assert.ErrorIs(t, err, ErrNotWritable)
	})

	n.SetWritable(WriteAllowed)

	t.Run("type mismatch", func(t *testing.T) {
		err := n.Write(ctx, NewString("x"))
		assert.ErrorIs(t, err, ErrTypeMismatch)
		assert.True(t, n.Value().Equal(NewInt(1)))
	})

	t.Run("rejected", func(t *testing.T) {
		cause := errors.New("device said no")
		n.SetValueHandler(func(context.Context, ValuePair) error { return cause })
		err := n.Write(ctx, NewInt(3))
		assert.ErrorIs(t, err, ErrWriteRejected)
		assert.ErrorIs(t, err, cause)
		assert.True(t, n.Value().Equal(NewInt(1)))
	})

	t.Run("accepted", func(t *testing.T) {
		var seen ValuePair
		n.SetValueHandler(func(_ context.Context, p ValuePair) error {
			seen = p
			return nil
		})
		require.NoError(t, n.Write(ctx, NewInt(4)))
		assert.True(t, seen.Old.Equal(NewInt(1)))
		assert.True(t, seen.New.Equal(NewInt(4)))
		assert.True(t, n.Value().Equal(NewInt(4)))
	})
}

func TestEnumWrite(t *testing.T) {
	n, _ := NewTree().Root().CreateChild("mode")
	n.SetValueType(EnumType("low", "mid", "high"))
	n.SetWritable(WriteAllowed)

	assert.NoError(t, n.Write(context.Background(), NewString("mid")))
	assert.ErrorIs(t, n.Write(context.Background(), NewString("max")), ErrTypeMismatch)
	assert.ErrorIs(t, n.Write(context.Background(), NewInt(1)), ErrTypeMismatch)
}

func TestSubscriptionHooksFirstAndLast(t *testing.T) {
	tree := NewTree()
	n, _ := tree.Root().CreateChild("v")
	var subs, unsubs int
	n.SetSubscriptionHooks(func(*Node) { subs++ }, func(*Node) { unsubs++ })

	m := tree.Subscriptions()
	id1 := m.Subscribe(n, nil)
	id2 := m.Subscribe(n, nil)
	assert.Equal(t, 1, subs)
	assert.Equal(t, 2, m.Count(n))

	assert.True(t, m.Unsubscribe(id1))
	assert.Equal(t, 0, unsubs)
	assert.True(t, m.HasValueSub(n))

	assert.True(t, m.Unsubscribe(id2))
	assert.Equal(t, 1, unsubs)
	assert.False(t, m.HasValueSub(n))
	assert.False(t, m.Unsubscribe(id2))
}

func TestSubscribeDeliversUpdates(t *testing.T) {
	tree := NewTree()
	n, _ := tree.Root().CreateChild("v")
	n.SetValue(NewInt(1))

	var got []string
	_, err := tree.Subscribe("/v", func(u Update) { got = append(got, u.Value.String()) })
	require.NoError(t, err)

	n.SetValue(NewInt(1))
	n.SetValue(NewInt(2))
	n.SetValue(NewString("x"))
	assert.Equal(t, []string{"1", "2", "x"}, got)
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()
	tree := NewTree()
	n, _ := tree.Root().CreateChild("add")
	n.SetAction(&Action{
		Params:  []Parameter{{Name: "a", Type: Number}, {Name: "b", Type: Number, Optional: true}},
		Results: []Column{{Name: "sum", Type: Number}},
		Handler: func(_ context.Context, req *ActionRequest) error {
			a, _ := req.Param("a").Int()
			b, _ := req.Param("b").Int()
			req.Table.AddRow(NewInt(a + b))
			return nil
		},
	})

	table, err := tree.Invoke(ctx, "/add", map[string]Value{"a": NewInt(2), "b": NewInt(3)})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.True(t, table.Rows[0][0].Equal(NewInt(5)))

	_, err = tree.Invoke(ctx, "/add", map[string]Value{"b": NewInt(3)})
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = tree.Invoke(ctx, "/add", map[string]Value{"a": NewString("2")})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = tree.Invoke(ctx, "/", nil)
	assert.ErrorIs(t, err, ErrNotAction)
}

func TestRoConfigAndPassword(t *testing.T) {
	n, _ := NewTree().Root().CreateChild("plant1")
	_, ok := n.Password()
	assert.False(t, ok)

	n.SetRoConfig("url", NewString("10.0.0.5"))
	n.SetPassword("secret")

	v, ok := n.RoConfig("url")
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.5", v.String())
	p, ok := n.Password()
	assert.True(t, ok)
	assert.Equal(t, "secret", p)

	cfg := n.RoConfigs()
	cfg["url"] = NewString("changed")
	v, _ = n.RoConfig("url")
	assert.Equal(t, "10.0.0.5", v.String())
}

func TestTableAddRowPads(t *testing.T) {
	tbl := &Table{Columns: []Column{{Name: "a"}, {Name: "b"}}}
	tbl.AddRow(NewInt(1))
	require.Len(t, tbl.Rows[0], 2)
	assert.True(t, tbl.Rows[0][1].IsNull())
}
