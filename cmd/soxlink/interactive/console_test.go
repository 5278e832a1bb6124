package interactive

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soxlink/soxlink-go/pkg/service"
	"github.com/soxlink/soxlink-go/pkg/sox"
	"github.com/soxlink/soxlink-go/pkg/sox/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// take returns and clears the buffered output.
func (b *syncBuffer) take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	b.buf.Reset()
	return s
}

var plantSpec = simulator.DeviceSpec{
	Name:     "plant1",
	Username: "admin",
	Password: "secret",
	Platform: "sim-jace",
	Kits:     []simulator.KitSpec{{Name: "sys", Checksum: 1234, Version: "1.2.28"}},
	App: simulator.ComponentSpec{
		Children: []simulator.ComponentSpec{{
			Name: "pump",
			Slots: []simulator.SlotSpec{
				{Name: "speed", Type: "float", Value: "1.5"},
				{Name: "boost", Type: "short", Action: true},
			},
		}},
	},
}

type fixture struct {
	dev *simulator.Device
	svc *service.BridgeService
	out *syncBuffer
	c   *Console
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev, err := plantSpec.Build()
	require.NoError(t, err)
	network := simulator.NewNetwork()
	network.Attach("10.0.0.5", sox.DefaultPort, dev)

	svc, err := service.NewBridgeService(service.DefaultBridgeConfig(), network)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { svc.Stop() })

	out := &syncBuffer{}
	return &fixture{dev: dev, svc: svc, out: out, c: newConsole(svc, out)}
}

func (f *fixture) run(t *testing.T, line string) string {
	t.Helper()
	require.True(t, f.c.Execute(context.Background(), line))
	return f.out.take()
}

func (f *fixture) addPlant(t *testing.T) {
	t.Helper()
	assert.Contains(t, f.run(t, "add plant1 10.0.0.5 1876 admin secret"), "Endpoint plant1 connected")
	require.Eventually(t, func() bool {
		_, err := f.svc.Tree().Get("/plant1/app/pump/speed")
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.run(t, "list"), "No endpoints configured")

	f.addPlant(t)
	out := f.run(t, "ls")
	assert.Contains(t, out, "Endpoints (1):")
	assert.Contains(t, out, "plant1")
	assert.Contains(t, out, "10.0.0.5:1876")
	assert.Contains(t, out, "CONNECTED")
	assert.Contains(t, out, "conn:")
}

func TestTreeAndGet(t *testing.T) {
	f := newFixture(t)
	f.addPlant(t)

	out := f.run(t, "tree /plant1")
	assert.Contains(t, out, "speed = 1.5")
	assert.Contains(t, out, "boost (action)")
	assert.Contains(t, out, "version (action)")

	out = f.run(t, "tree / 1")
	assert.Contains(t, out, "plant1")
	assert.Contains(t, out, "addServer (action)")
	assert.NotContains(t, out, "pump")

	out = f.run(t, "get /plant1/app/pump/speed")
	assert.Contains(t, out, "/plant1/app/pump/speed = 1.5")
	assert.Contains(t, out, "Type: number")

	assert.Contains(t, f.run(t, "get /plant1/nope"), "Error:")
}

func TestSet(t *testing.T) {
	f := newFixture(t)
	f.addPlant(t)

	out := f.run(t, "set /plant1/app/pump/speed 20")
	assert.NotContains(t, out, "Error:")
	require.Eventually(t, func() bool {
		n, err := f.svc.Tree().Get("/plant1/app/pump/speed")
		return err == nil && n.Value().String() == "20"
	}, time.Second, 5*time.Millisecond)

	assert.Contains(t, f.run(t, "set /plant1/app/pump/speed fast"), "Error:")
}

func TestInvoke(t *testing.T) {
	f := newFixture(t)
	f.addPlant(t)

	assert.Contains(t, f.run(t, "invoke /plant1/app/pump/boost 3"), "OK")
	assert.Contains(t, f.run(t, "invoke /plant1/app/pump/boost value=4"), "OK")
	require.Eventually(t, func() bool {
		return len(f.dev.Invocations()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Contains(t, f.run(t, "invoke /addServer bogus=1"), `unknown parameter "bogus"`)
	assert.Contains(t, f.run(t, "invoke /plant1/app/pump/speed"), "Error:")
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	f.addPlant(t)

	out := f.run(t, "version plant1")
	assert.Contains(t, out, "Platform: sim-jace")
	assert.Contains(t, out, "Kits (1):")
	assert.Contains(t, out, "sys")
	assert.Contains(t, out, "1.2.28")

	assert.Contains(t, f.run(t, "version plant9"), "endpoint not found")
}

func TestWatch(t *testing.T) {
	f := newFixture(t)
	f.addPlant(t)

	f.run(t, "watch /plant1/app/pump/speed")
	assert.Equal(t, []string{"/plant1/app/pump/speed"}, f.c.Watching())
	assert.Contains(t, f.run(t, "watch /plant1/app/pump/speed"), "already watching")

	require.Eventually(t, func() bool {
		return f.dev.Counts().Subscribes == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, f.dev.Update("/pump", "speed", sox.Float(7)))
	require.Eventually(t, func() bool {
		return strings.Contains(f.out.take(), "[WATCH] /plant1/app/pump/speed = 7")
	}, time.Second, 5*time.Millisecond)

	assert.NotContains(t, f.run(t, "unwatch /plant1/app/pump/speed"), "Error:")
	assert.Empty(t, f.c.Watching())
	assert.Contains(t, f.run(t, "unwatch /plant1/app/pump/speed"), "not watching")
}

func TestAddAndRemove(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "add plant1 10.0.0.5"), "Usage: add")
	assert.Contains(t, f.run(t, "add plant1 10.0.0.5 port admin"), "invalid endpoint")
	assert.Contains(t, f.run(t, "add plant1 10.0.0.5 1876 admin wrong"), "Error:")
	assert.Empty(t, f.svc.Registry().Endpoints())

	f.addPlant(t)
	assert.Contains(t, f.run(t, "remove plant1"), "Endpoint plant1 removed")
	assert.Nil(t, f.svc.Tree().Root().Child("plant1"))
	assert.Contains(t, f.run(t, "remove plant1"), "endpoint not found")
}

func TestMisc(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "help"), "soxlink Commands:")
	assert.Contains(t, f.run(t, "frobnicate"), "Unknown command: frobnicate")
	assert.Contains(t, f.run(t, "get"), "Usage: get <path>")
	assert.Contains(t, f.run(t, "discover"), "discovery disabled")
	assert.Empty(t, f.run(t, "   "))

	assert.False(t, f.c.Execute(context.Background(), "quit"))
}
