// Package mirror builds and refreshes the node subtree that mirrors a
// device's component tree.
//
// Every component becomes a node named after it; every slot becomes a child
// of that node. Property slots carry the translated value and, unless the
// slot is read-only, a write handler that sends writes back to the device.
// Action slots become invokable actions. Building is idempotent: a refresh
// walks the same component again and updates nodes in place.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/soxlink/soxlink-go/pkg/meta"
	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/sox"
	"github.com/soxlink/soxlink-go/pkg/subscription"
	"github.com/soxlink/soxlink-go/pkg/translate"
	"github.com/soxlink/soxlink-go/pkg/worker"
)

var (
	ErrTreeBuild = errors.New("tree build failed")
	ErrInvoke    = errors.New("invoke failed")
)

// rangeSeparator splits a "range" facet into enum symbols.
const rangeSeparator = ", "

// metaSlot is the name of the packed position/flags slot.
const metaSlot = "meta"

// ValueParam is the parameter name of generated actions.
const ValueParam = "value"

// Sink receives events raised by mirrored components and nodes. The
// connection manager implements it by queueing onto its event loop.
type Sink interface {
	ComponentChanged(c *sox.Component, mask sox.SubscriptionMask)
	ObserverAttached(c *sox.Component)
	ObserverDetached(c *sox.Component)
}

// Config configures a Builder.
type Config struct {
	Client   sox.Client
	Executor worker.Executor
	Mux      *subscription.Multiplexer
	Sink     Sink

	// Logger for operational messages (optional).
	Logger *slog.Logger

	// Recorder for protocol capture (optional).
	Recorder *log.Recorder
}

// Builder mirrors one device session. It is not re-entrant: Build and
// Refresh must be called from a single goroutine.
type Builder struct {
	client sox.Client
	exec   worker.Executor
	mux    *subscription.Multiplexer
	sink   Sink
	logger *slog.Logger
	rec    *log.Recorder

	mu      sync.RWMutex
	parents map[*sox.Component]*node.Node
	nodes   map[*sox.Component]*node.Node
}

// New creates a Builder.
func New(cfg Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = log.NewRecorder(nil, "")
	}
	return &Builder{
		client:  cfg.Client,
		exec:    cfg.Executor,
		mux:     cfg.Mux,
		sink:    cfg.Sink,
		logger:  logger,
		rec:     rec,
		parents: make(map[*sox.Component]*node.Node),
		nodes:   make(map[*sox.Component]*node.Node),
	}
}

// Build mirrors c and its descendants under parent. Slot failures do not
// stop the build; they are joined into one ErrTreeBuild error.
func (b *Builder) Build(ctx context.Context, parent *node.Node, c *sox.Component) error {
	var errs []error
	b.build(ctx, parent, c, true, &errs)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrTreeBuild, errors.Join(errs...))
	}
	return nil
}

// Refresh rebuilds a previously mirrored component in place. Tree changes
// also rebuild its descendants, picking up new children.
func (b *Builder) Refresh(ctx context.Context, c *sox.Component, mask sox.SubscriptionMask) error {
	b.mu.RLock()
	parent, ok := b.parents[c]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: component %s was never mirrored", ErrTreeBuild, c.Path())
	}
	var errs []error
	b.build(ctx, parent, c, mask&sox.MaskTree != 0, &errs)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrTreeBuild, errors.Join(errs...))
	}
	return nil
}

// Node returns the node mirroring c.
func (b *Builder) Node(c *sox.Component) (*node.Node, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.nodes[c]
	return n, ok
}

func (b *Builder) build(ctx context.Context, parent *node.Node, c *sox.Component, recurse bool, errs *[]error) {
	n, _ := parent.CreateChild(c.Name())
	n.SetSerializable(false)

	b.mu.Lock()
	b.parents[c] = parent
	b.nodes[c] = n
	b.mu.Unlock()

	c.SetListener(func(comp *sox.Component, mask sox.SubscriptionMask) {
		b.sink.ComponentChanged(comp, mask)
	})

	for _, slot := range c.Type().Slots {
		if err := b.buildSlot(n, c, slot); err != nil {
			*errs = append(*errs, fmt.Errorf("%s.%s: %w", c.Path(), slot.Name, err))
		}
	}

	if !recurse {
		return
	}
	for _, child := range c.Children() {
		if ctx.Err() != nil {
			*errs = append(*errs, ctx.Err())
			return
		}
		b.build(ctx, n, child, true, errs)
	}
}

func (b *Builder) buildSlot(n *node.Node, c *sox.Component, slot sox.Slot) error {
	sn, _ := n.CreateChild(slot.Name)
	if slot.IsAction() {
		return b.buildAction(sn, c, slot)
	}

	vt, err := translate.NodeType(slot.Type)
	if err != nil {
		return err
	}
	val, err := b.currentValue(c, slot)
	if err != nil {
		return err
	}

	var symbols []string
	if r, ok := slot.Range(); ok && r != "" {
		symbols = strings.Split(r, rangeSeparator)
		vt = node.EnumType(symbols...)
		val = b.enumValue(c, slot, val, symbols)
	}
	sn.SetValueType(vt)
	sn.SetValue(val)
	b.observe(c, sn)

	if slot.Name == metaSlot {
		b.buildMeta(sn, c, val)
	}

	if slot.ReadOnly() {
		sn.SetWritable(node.WriteNever)
		sn.SetValueHandler(nil)
		return nil
	}
	sn.SetWritable(node.WriteAllowed)
	sn.SetValueHandler(b.writeHandler(c, slot, symbols))
	return nil
}

func (b *Builder) currentValue(c *sox.Component, slot sox.Slot) (node.Value, error) {
	if v, ok := c.Get(slot.Name); ok && v != nil {
		return translate.ToNode(v)
	}
	return translate.Default(slot.Type)
}

// enumValue maps a numeric slot value to the symbol at that index.
func (b *Builder) enumValue(c *sox.Component, slot sox.Slot, v node.Value, symbols []string) node.Value {
	if v.IsNull() {
		return node.Null(node.KindEnum)
	}
	i, ok := v.Int()
	if !ok || i < 0 || i >= int64(len(symbols)) {
		b.logger.Warn("enum index out of range",
			"component", c.Path(), "slot", slot.Name, "value", v.String(), "symbols", len(symbols))
		return node.Null(node.KindEnum)
	}
	return node.NewString(symbols[i])
}

func (b *Builder) buildMeta(sn *node.Node, c *sox.Component, v node.Value) {
	raw, _ := v.Int()
	m := meta.Unpack(int32(raw))

	set := func(name string, t node.ValueType, val node.Value) {
		child, _ := sn.CreateChild(name)
		child.SetValueType(t)
		child.SetValue(val)
		b.observe(c, child)
	}
	set("x", node.Number, node.NewInt(int64(m.X)))
	set("y", node.Number, node.NewInt(int64(m.Y)))
	for i, name := range []string{"groupOne", "groupTwo", "groupThree", "groupFour"} {
		set(name, node.Bool, node.NewBool(m.Groups()[i]))
	}
}

// observe routes first/last subscriber events on n to the sink and
// registers n with the multiplexer.
func (b *Builder) observe(c *sox.Component, n *node.Node) {
	n.SetSubscriptionHooks(
		func(*node.Node) { b.sink.ObserverAttached(c) },
		func(*node.Node) { b.sink.ObserverDetached(c) },
	)
	if b.mux != nil {
		b.mux.Track(c, n)
	}
}

func (b *Builder) writeHandler(c *sox.Component, slot sox.Slot, symbols []string) node.ValueHandler {
	return func(ctx context.Context, p node.ValuePair) error {
		var rv sox.Value
		if symbols != nil {
			s, _ := p.New.Text()
			idx := -1
			for i, sym := range symbols {
				if sym == s {
					idx = i
					break
				}
			}
			if idx < 0 || idx > 0xff {
				return fmt.Errorf("%w: %q is not one of %v", translate.ErrValueMismatch, s, symbols)
			}
			rv = sox.Byte(idx)
		} else {
			var err error
			rv, err = translate.ToRemote(p.New, slot.Type)
			if err != nil {
				return err
			}
		}

		start := time.Now()
		err := b.client.Write(ctx, c, slot.Name, rv)
		b.rec.Request(log.RequestEvent{
			Operation: log.OpWrite,
			Component: c.Path(),
			Slot:      slot.Name,
			Value:     rv.String(),
			Duration:  time.Since(start),
		}, err)
		if err != nil {
			b.logger.Warn("write rejected by device", "component", c.Path(), "slot", slot.Name, "error", err)
			return err
		}
		return nil
	}
}

func (b *Builder) buildAction(sn *node.Node, c *sox.Component, slot sox.Slot) error {
	pt, hasParam, err := translate.ParamType(slot.Type)
	if err != nil {
		return err
	}
	a := &node.Action{}
	if hasParam {
		a.Params = []node.Parameter{{Name: ValueParam, Type: pt, Optional: true}}
	}
	a.Handler = func(_ context.Context, req *node.ActionRequest) error {
		var arg sox.Value
		if hasParam && !req.Param(ValueParam).IsNull() {
			v, err := translate.ToRemote(req.Param(ValueParam), slot.Type)
			if err != nil {
				return err
			}
			arg = v
		}
		ok := b.exec.Submit(func(ctx context.Context) {
			b.invoke(ctx, c, slot.Name, arg)
		})
		if !ok {
			return fmt.Errorf("%w: %s.%s: worker pool closed", ErrInvoke, c.Path(), slot.Name)
		}
		return nil
	}
	sn.SetAction(a)
	return nil
}

func (b *Builder) invoke(ctx context.Context, c *sox.Component, slot string, arg sox.Value) {
	start := time.Now()
	err := b.client.Invoke(ctx, c, slot, arg)
	req := log.RequestEvent{
		Operation: log.OpInvoke,
		Component: c.Path(),
		Slot:      slot,
		Duration:  time.Since(start),
	}
	if arg != nil {
		req.Value = arg.String()
	}
	b.rec.Request(req, err)
	if err != nil {
		b.logger.Error("action failed",
			"component", c.Path(), "slot", slot, "error", fmt.Errorf("%w: %w", ErrInvoke, err))
	}
}
