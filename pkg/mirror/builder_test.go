package mirror_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/soxlink/soxlink-go/pkg/meta"
	"github.com/soxlink/soxlink-go/pkg/mirror"
	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/sox"
	"github.com/soxlink/soxlink-go/pkg/sox/mocks"
	"github.com/soxlink/soxlink-go/pkg/sox/simulator"
	"github.com/soxlink/soxlink-go/pkg/subscription"
	"github.com/soxlink/soxlink-go/pkg/translate"
	"github.com/soxlink/soxlink-go/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// inlineExecutor runs submitted tasks on the caller's goroutine.
type inlineExecutor struct{}

func (inlineExecutor) Submit(task worker.Task) bool {
	task(context.Background())
	return true
}

func (inlineExecutor) AfterFunc(d time.Duration, task worker.Task) worker.Timer {
	return time.AfterFunc(d, func() { task(context.Background()) })
}

// loopSink stands in for the connection manager's event loop by handling
// events synchronously.
type loopSink struct {
	mu      sync.Mutex
	builder *mirror.Builder
	mux     *subscription.Multiplexer
	changed []string
}

func (s *loopSink) ComponentChanged(c *sox.Component, mask sox.SubscriptionMask) {
	s.mu.Lock()
	s.changed = append(s.changed, c.Path())
	s.mu.Unlock()
	_ = s.builder.Refresh(context.Background(), c, mask)
}

func (s *loopSink) ObserverAttached(c *sox.Component) { _ = s.mux.Attach(context.Background(), c) }
func (s *loopSink) ObserverDetached(c *sox.Component) { _ = s.mux.Detach(context.Background(), c) }

type fixture struct {
	dev     *simulator.Device
	client  sox.Client
	app     *sox.Component
	tree    *node.Tree
	ep      *node.Node
	sink    *loopSink
	builder *mirror.Builder
}

var plantSpec = simulator.DeviceSpec{
	Name: "plant1",
	App: simulator.ComponentSpec{
		Children: []simulator.ComponentSpec{
			{
				Name: "pump",
				Type: "control::Pump",
				Slots: []simulator.SlotSpec{
					{Name: "speed", Type: "float", Value: "12.5"},
					{Name: "level", Type: "byte", Range: "low, mid, high", Value: "0"},
					{Name: "power", Type: "byte", ReadOnly: true, Range: "off, on", Value: "1"},
					{Name: "status", Type: "str", ReadOnly: true, Value: "ok"},
					{Name: "serial", Type: "buf", ReadOnly: true, Value: "0xbeef"},
					{Name: "meta", Type: "int", Value: "168034313"},
					{Name: "count", Type: "int"},
					{Name: "reset", Type: "void", Action: true},
					{Name: "boost", Type: "short", Action: true},
				},
				Children: []simulator.ComponentSpec{
					{Name: "motor", Slots: []simulator.SlotSpec{{Name: "rpm", Type: "long", ReadOnly: true, Value: "1500"}}},
				},
			},
		},
	},
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev, err := plantSpec.Build()
	require.NoError(t, err)

	ctx := context.Background()
	client, err := dev.Dial(ctx, sox.Credentials{})
	require.NoError(t, err)
	app, err := client.LoadApp(ctx)
	require.NoError(t, err)

	tree := node.NewTree()
	ep, _ := tree.Root().CreateChild("plant1")

	f := &fixture{dev: dev, client: client, app: app, tree: tree, ep: ep, sink: &loopSink{}}
	f.sink.mux = subscription.New(subscription.Config{Subscriber: client, Observers: tree.Subscriptions()})
	f.builder = mirror.New(mirror.Config{
		Client:   client,
		Executor: inlineExecutor{},
		Mux:      f.sink.mux,
		Sink:     f.sink,
	})
	f.sink.builder = f.builder
	require.NoError(t, f.builder.Build(ctx, ep, app))
	return f
}

func (f *fixture) node(t *testing.T, path string) *node.Node {
	t.Helper()
	n, err := f.tree.Get("/plant1/app" + path)
	require.NoError(t, err)
	return n
}

func TestBuildMirrorsHierarchy(t *testing.T) {
	f := newFixture(t)

	speed := f.node(t, "/pump/speed")
	assert.True(t, speed.Value().Equal(node.NewNumber(12.5)))
	assert.Equal(t, node.WriteAllowed, speed.Writable())

	rpm := f.node(t, "/pump/motor/rpm")
	assert.True(t, rpm.Value().Equal(node.NewInt(1500)))

	assert.Equal(t, "0xbeef", f.node(t, "/pump/serial").Value().String())
	assert.Equal(t, "ok", f.node(t, "/pump/status").Value().String())

	count := f.node(t, "/pump/count")
	assert.True(t, count.Value().IsNull())
	assert.Equal(t, node.KindNumber, count.Value().Kind())

	app := f.node(t, "")
	assert.False(t, app.Serializable())

	pumpComp, _ := f.app.Find("pump")
	pn, ok := f.builder.Node(pumpComp)
	require.True(t, ok)
	assert.Equal(t, "/plant1/app/pump", pn.Path())
}

func TestRangeFacetOrderAndWrite(t *testing.T) {
	f := newFixture(t)
	level := f.node(t, "/pump/level")

	assert.Equal(t, []string{"low", "mid", "high"}, level.ValueType().Enums())
	assert.Equal(t, "low", level.Value().String())

	require.NoError(t, level.Write(context.Background(), node.NewString("mid")))
	assert.Equal(t, "mid", level.Value().String())

	master, _ := f.dev.Root().Find("pump")
	v, _ := master.Get("level")
	assert.Equal(t, sox.Byte(1), v)
}

func TestReadOnlyRangeFacet(t *testing.T) {
	f := newFixture(t)
	power := f.node(t, "/pump/power")

	assert.Equal(t, "on", power.Value().String())
	assert.Equal(t, node.WriteNever, power.Writable())
	assert.ErrorIs(t, power.Write(context.Background(), node.NewString("off")), node.ErrNotWritable)
}

func TestEnumIndexOutOfRangeIsNull(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.dev.Update("/pump", "level", sox.Byte(9)))
	pump, _ := f.app.Find("pump")
	require.NoError(t, f.builder.Refresh(context.Background(), pump, sox.MaskConfig))

	assert.True(t, f.node(t, "/pump/level").Value().IsNull())
}

func TestWriteRejectedLeavesValue(t *testing.T) {
	f := newFixture(t)
	speed := f.node(t, "/pump/speed")
	boom := errors.New("nak")
	f.dev.FailWrites("/pump", "speed", boom)

	err := speed.Write(context.Background(), node.NewNumber(99))
	assert.ErrorIs(t, err, node.ErrWriteRejected)
	assert.ErrorIs(t, err, boom)
	assert.True(t, speed.Value().Equal(node.NewNumber(12.5)))
}

func TestWriteTranslationRejected(t *testing.T) {
	f := newFixture(t)
	count := f.node(t, "/pump/count")

	err := count.Write(context.Background(), node.NewNumber(1.5))
	assert.ErrorIs(t, err, node.ErrWriteRejected)
	assert.ErrorIs(t, err, translate.ErrValueMismatch)
	assert.Zero(t, f.dev.Counts().Writes)
}

func TestMetaChildren(t *testing.T) {
	f := newFixture(t)
	want := meta.Unpack(168034313)

	assert.True(t, f.node(t, "/pump/meta/x").Value().Equal(node.NewInt(int64(want.X))))
	assert.True(t, f.node(t, "/pump/meta/y").Value().Equal(node.NewInt(int64(want.Y))))
	assert.Equal(t, "true", f.node(t, "/pump/meta/groupOne").Value().String())
	assert.Equal(t, "false", f.node(t, "/pump/meta/groupTwo").Value().String())
	assert.Equal(t, node.KindBool, f.node(t, "/pump/meta/groupFour").ValueType().Kind())
}

func TestObserversShareOneSubscription(t *testing.T) {
	f := newFixture(t)
	subs := f.tree.Subscriptions()

	var ids []node.SubscriptionID
	for _, p := range []string{"/pump/speed", "/pump/level", "/pump/meta/x", "/pump/speed"} {
		ids = append(ids, subs.Subscribe(f.node(t, p), nil))
	}
	assert.Equal(t, 1, f.dev.Counts().Subscribes)

	for _, id := range ids {
		subs.Unsubscribe(id)
	}
	assert.Equal(t, 1, f.dev.Counts().Unsubscribes)
}

func TestDeviceChangeRefreshesSubscribedNode(t *testing.T) {
	f := newFixture(t)
	var got []string
	_, err := f.tree.Subscribe("/plant1/app/pump/speed", func(u node.Update) { got = append(got, u.Value.String()) })
	require.NoError(t, err)

	require.NoError(t, f.dev.Update("/pump", "speed", sox.Float(20)))
	assert.Equal(t, []string{"12.5", "20"}, got)
	assert.Equal(t, []string{"/pump"}, f.sink.changed)
}

func TestRebuildInstallsListenerOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.builder.Build(context.Background(), f.ep, f.app))

	f.tree.Subscriptions().Subscribe(f.node(t, "/pump/speed"), nil)
	require.NoError(t, f.dev.Update("/pump", "speed", sox.Float(1)))
	assert.Len(t, f.sink.changed, 1)
}

func TestActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tree.Invoke(ctx, "/plant1/app/pump/reset", nil)
	require.NoError(t, err)
	assert.Empty(t, f.node(t, "/pump/reset").Action().Params)

	boost := f.node(t, "/pump/boost").Action()
	require.Len(t, boost.Params, 1)
	assert.Equal(t, node.KindNumber, boost.Params[0].Type.Kind())

	_, err = f.tree.Invoke(ctx, "/plant1/app/pump/boost", map[string]node.Value{mirror.ValueParam: node.NewInt(300)})
	require.NoError(t, err)

	_, err = f.tree.Invoke(ctx, "/plant1/app/pump/boost", map[string]node.Value{mirror.ValueParam: node.NewInt(-1)})
	assert.ErrorIs(t, err, translate.ErrValueMismatch)

	invs := f.dev.Invocations()
	require.Len(t, invs, 2)
	assert.Equal(t, simulator.Invocation{Path: "/pump", Slot: "reset"}, invs[0])
	assert.Equal(t, simulator.Invocation{Path: "/pump", Slot: "boost", Value: sox.Short(300)}, invs[1])
}

func TestActionWithoutValue(t *testing.T) {
	f := newFixture(t)

	boost := f.node(t, "/pump/boost").Action()
	require.Len(t, boost.Params, 1)
	assert.True(t, boost.Params[0].Optional)

	_, err := f.tree.Invoke(context.Background(), "/plant1/app/pump/boost", nil)
	require.NoError(t, err)

	invs := f.dev.Invocations()
	require.Len(t, invs, 1)
	assert.Equal(t, simulator.Invocation{Path: "/pump", Slot: "boost"}, invs[0])
}

func TestInvokeFailureIsNotReturned(t *testing.T) {
	client := mocks.NewMockClient(t)
	typ := &sox.Type{Slots: []sox.Slot{{Name: "go", Type: sox.TypeVoid, Kind: sox.SlotAction}}}
	comp := sox.NewComponent(0, "app", typ)
	client.EXPECT().Invoke(mock.Anything, comp, "go", nil).Return(errors.New("timeout")).Once()

	tree := node.NewTree()
	b := mirror.New(mirror.Config{Client: client, Executor: inlineExecutor{}, Sink: &loopSink{}})
	require.NoError(t, b.Build(context.Background(), tree.Root(), comp))

	_, err := tree.Invoke(context.Background(), "/app/go", nil)
	assert.NoError(t, err)
}

func TestUnknownSlotTypeDoesNotStopBuild(t *testing.T) {
	typ := &sox.Type{Slots: []sox.Slot{
		{Name: "weird", Type: sox.TypeID(42)},
		{Name: "ok", Type: sox.TypeInt},
	}}
	comp := sox.NewComponent(0, "app", typ)
	comp.Set("ok", sox.Int(5))

	tree := node.NewTree()
	b := mirror.New(mirror.Config{Client: mocks.NewMockClient(t), Executor: inlineExecutor{}, Sink: &loopSink{}})
	err := b.Build(context.Background(), tree.Root(), comp)

	assert.ErrorIs(t, err, mirror.ErrTreeBuild)
	assert.ErrorIs(t, err, translate.ErrUnknownType)
	ok, err := tree.Get("/app/ok")
	require.NoError(t, err)
	assert.True(t, ok.Value().Equal(node.NewInt(5)))
}

func TestRefreshUnknownComponent(t *testing.T) {
	f := newFixture(t)
	err := f.builder.Refresh(context.Background(), sox.NewComponent(99, "ghost", nil), sox.MaskRuntime)
	assert.ErrorIs(t, err, mirror.ErrTreeBuild)
}
