package sox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueStrings(t *testing.T) {
	tests := []struct {
		v    Value
		want string
		typ  TypeID
	}{
		{Bool(true), "true", TypeBool},
		{Byte(7), "7", TypeByte},
		{Short(65535), "65535", TypeShort},
		{Int(-100000), "-100000", TypeInt},
		{Long(1 << 40), "1099511627776", TypeLong},
		{Float(1.5), "1.5", TypeFloat},
		{Double(3.14), "3.14", TypeDouble},
		{Str("hi"), "hi", TypeStr},
		{Buf{0xde, 0xad}, "0xdead", TypeBuf},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
			assert.Equal(t, tt.typ, tt.v.TypeID())

			parsed, err := ParseValue(tt.typ, tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.v, parsed)
		})
	}
}

func TestParseBuf(t *testing.T) {
	b, err := ParseBuf("0x")
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = ParseBuf("dead")
	assert.ErrorIs(t, err, ErrBadBuf)
	_, err = ParseBuf("0xzz")
	assert.ErrorIs(t, err, ErrBadBuf)
}

func TestParseTypeID(t *testing.T) {
	id, ok := ParseTypeID("double")
	assert.True(t, ok)
	assert.Equal(t, TypeDouble, id)

	_, ok = ParseTypeID("decimal")
	assert.False(t, ok)
	assert.Equal(t, "type(42)", TypeID(42).String())
	assert.True(t, TypeFloat.IsNumeric())
	assert.False(t, TypeStr.IsNumeric())
}

func TestMask(t *testing.T) {
	m := MaskRuntime | MaskConfig
	assert.True(t, m.Has(MaskRuntime))
	assert.False(t, m.Has(MaskTree))
	assert.Equal(t, "config|runtime", m.String())
	assert.Equal(t, "none", SubscriptionMask(0).String())
}

func TestSlotFacets(t *testing.T) {
	s := Slot{Name: "mode", Type: TypeByte, Facets: Facets{"readonly": true, "range": "off, on"}}
	assert.True(t, s.ReadOnly())
	r, ok := s.Range()
	assert.True(t, ok)
	assert.Equal(t, "off, on", r)

	assert.False(t, Slot{}.ReadOnly())
	assert.False(t, Slot{Facets: Facets{"readonly": "yes"}}.ReadOnly())
}

func TestComponentTree(t *testing.T) {
	typ := &Type{QName: "control::NumericWritable", Slots: []Slot{{Name: "out", Type: TypeFloat}}}
	root := NewComponent(0, "app", nil)
	svc := NewComponent(1, "service", nil)
	pump := NewComponent(2, "pump", typ)
	root.AddChild(svc)
	svc.AddChild(pump)

	assert.Equal(t, "/", root.Path())
	assert.Equal(t, "/service/pump", pump.Path())
	assert.Same(t, svc, pump.Parent())

	found, ok := root.Find("/service/pump")
	require.True(t, ok)
	assert.Same(t, pump, found)
	_, ok = root.Find("service/nope")
	assert.False(t, ok)

	slot, ok := pump.Type().Slot("out")
	assert.True(t, ok)
	assert.Equal(t, TypeFloat, slot.Type)

	_, ok = pump.Get("out")
	assert.False(t, ok)
	pump.Set("out", Float(2))
	v, ok := pump.Get("out")
	assert.True(t, ok)
	assert.Equal(t, Float(2), v)
}

func TestComponentListenerOnce(t *testing.T) {
	c := NewComponent(1, "c", nil)
	var calls []SubscriptionMask

	c.Changed(MaskRuntime)
	assert.True(t, c.SetListener(func(_ *Component, m SubscriptionMask) { calls = append(calls, m) }))
	assert.False(t, c.SetListener(func(*Component, SubscriptionMask) { t.Error("second listener installed") }))
	assert.True(t, c.HasListener())

	c.Changed(MaskConfig)
	assert.Equal(t, []SubscriptionMask{MaskConfig}, calls)
}

func TestComponentClone(t *testing.T) {
	root := NewComponent(0, "app", nil)
	child := NewComponent(1, "a", nil)
	root.AddChild(child)
	child.Set("v", Int(1))
	child.SetSubscription(MaskRuntime)
	child.SetListener(func(*Component, SubscriptionMask) {})

	clone := root.Clone()
	cc, ok := clone.Find("a")
	require.True(t, ok)
	assert.NotSame(t, child, cc)
	assert.Equal(t, "/a", cc.Path())
	assert.False(t, cc.HasListener())
	assert.Zero(t, cc.Subscription())

	cc.Set("v", Int(2))
	v, _ := child.Get("v")
	assert.Equal(t, Int(1), v)
}

func TestCredentialsHostPort(t *testing.T) {
	assert.Equal(t, "10.0.0.1:1876", Credentials{Address: "10.0.0.1", Port: DefaultPort}.HostPort())
	assert.Equal(t, "[fe80::1]:1876", Credentials{Address: "fe80::1", Port: 1876}.HostPort())
}
