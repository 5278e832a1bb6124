package subscription_test

import (
	"context"
	"errors"
	"testing"

	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/sox"
	"github.com/soxlink/soxlink-go/pkg/sox/mocks"
	"github.com/soxlink/soxlink-go/pkg/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tree   *node.Tree
	comp   *sox.Component
	nodes  []*node.Node
	client *mocks.MockClient
	mux    *subscription.Multiplexer
}

// newFixture wires n value nodes of one component so that the first and
// last subscriber on each node attach and detach synchronously.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	f := &fixture{
		tree:   node.NewTree(),
		comp:   sox.NewComponent(3, "pump", nil),
		client: mocks.NewMockClient(t),
	}
	f.mux = subscription.New(subscription.Config{
		Subscriber: f.client,
		Observers:  f.tree.Subscriptions(),
	})
	parent, _ := f.tree.Root().CreateChild("pump")
	for i := range n {
		vn, _ := parent.CreateChild(string(rune('a' + i)))
		vn.SetSubscriptionHooks(
			func(*node.Node) { _ = f.mux.Attach(context.Background(), f.comp) },
			func(*node.Node) { _ = f.mux.Detach(context.Background(), f.comp) },
		)
		f.mux.Track(f.comp, vn)
		f.nodes = append(f.nodes, vn)
	}
	return f
}

func TestManyObserversOneSubscription(t *testing.T) {
	f := newFixture(t, 3)
	f.client.EXPECT().Subscribe(mock.Anything, f.comp, subscription.Mask).Return(nil).Once()
	f.client.EXPECT().Unsubscribe(mock.Anything, f.comp, subscription.Mask).Return(nil).Once()

	subs := f.tree.Subscriptions()
	var ids []node.SubscriptionID
	for _, n := range f.nodes {
		ids = append(ids, subs.Subscribe(n, nil), subs.Subscribe(n, nil))
	}

	st := f.mux.State(f.comp)
	assert.Equal(t, 3, st.Observers)
	assert.True(t, st.Mask.Has(sox.MaskRuntime|sox.MaskConfig))

	for _, id := range ids {
		subs.Unsubscribe(id)
	}
	st = f.mux.State(f.comp)
	assert.Zero(t, st.Observers)
	assert.Zero(t, st.Mask)
}

func TestDetachKeepsSubscriptionWhileSiblingObserved(t *testing.T) {
	f := newFixture(t, 2)
	f.client.EXPECT().Subscribe(mock.Anything, f.comp, subscription.Mask).Return(nil).Once()

	subs := f.tree.Subscriptions()
	a := subs.Subscribe(f.nodes[0], nil)
	subs.Subscribe(f.nodes[1], nil)
	subs.Unsubscribe(a)

	st := f.mux.State(f.comp)
	assert.Equal(t, 1, st.Observers)
	assert.True(t, st.Mask.Has(sox.MaskRuntime))
}

func TestAttachSkipsAlreadySubscribedComponent(t *testing.T) {
	f := newFixture(t, 1)
	f.comp.SetSubscription(sox.MaskRuntime)

	require.NoError(t, f.mux.Attach(context.Background(), f.comp))
	f.client.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribeFailureRetriedOnNextAttach(t *testing.T) {
	f := newFixture(t, 1)
	f.client.EXPECT().Subscribe(mock.Anything, f.comp, subscription.Mask).Return(errors.New("timeout")).Once()
	f.client.EXPECT().Subscribe(mock.Anything, f.comp, subscription.Mask).Return(nil).Once()

	ctx := context.Background()
	assert.Error(t, f.mux.Attach(ctx, f.comp))
	assert.Zero(t, f.mux.State(f.comp).Mask)
	assert.NoError(t, f.mux.Attach(ctx, f.comp))
	assert.True(t, f.mux.State(f.comp).Mask.Has(sox.MaskRuntime))
}

func TestDetachWithoutObserversFloorsAtZero(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.mux.Detach(context.Background(), f.comp))
	assert.Zero(t, f.mux.State(f.comp).Observers)
}

func TestResyncSubscribesObservedComponents(t *testing.T) {
	f := newFixture(t, 2)
	other := sox.NewComponent(4, "idle", nil)
	idle, _ := f.tree.Root().CreateChild("idle")
	f.mux.Track(other, idle)

	// Observer exists before this session's hooks are installed.
	f.nodes[1].SetSubscriptionHooks(nil, nil)
	f.tree.Subscriptions().Subscribe(f.nodes[1], nil)

	f.client.EXPECT().Subscribe(mock.Anything, f.comp, subscription.Mask).Return(nil).Once()
	require.NoError(t, f.mux.Resync(context.Background()))
	assert.Equal(t, 1, f.mux.State(f.comp).Observers)
	assert.Zero(t, f.mux.State(other).Mask)

	f.mux.Reset()
	assert.Equal(t, subscription.State{}, f.mux.State(f.comp))
}
