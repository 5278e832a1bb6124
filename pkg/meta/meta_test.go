package meta

import "testing"

func TestUnpackKnownValues(t *testing.T) {
	tests := []struct {
		name string
		v    int32
		want Meta
	}{
		{"zero", 0, Meta{}},
		{"position", 0x0a140000, Meta{X: 10, Y: 20}},
		{"negative x", -0x01000000 | 0x00050000, Meta{X: -1, Y: 5}},
		{"negative y", 0x03ff0000, Meta{X: 3, Y: -1}},
		{"flags", 0x0000000f, Meta{GroupOne: true, GroupTwo: true, GroupThree: true, GroupFour: true}},
		{"group three only", 0x00000004, Meta{GroupThree: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unpack(tt.v); got != tt.want {
				t.Errorf("Unpack(%#x) = %+v, want %+v", tt.v, got, tt.want)
			}
		})
	}
}

func TestPackUnpackBijection(t *testing.T) {
	for x := -128; x <= 127; x++ {
		for y := -128; y <= 127; y++ {
			for flags := 0; flags < 16; flags++ {
				m := Meta{
					X:          x,
					Y:          y,
					GroupOne:   flags&0x01 != 0,
					GroupTwo:   flags&0x02 != 0,
					GroupThree: flags&0x04 != 0,
					GroupFour:  flags&0x08 != 0,
				}
				if got := Unpack(m.Pack()); got != m {
					t.Fatalf("Unpack(Pack(%+v)) = %+v", m, got)
				}
			}
		}
	}
}

func TestPackIgnoresUnusedByte(t *testing.T) {
	m := Unpack(0x0102ff03)
	if m.Pack() != 0x01020003 {
		t.Errorf("Pack() = %#x, want %#x", m.Pack(), 0x01020003)
	}
}

func TestGroups(t *testing.T) {
	g := Meta{GroupTwo: true, GroupFour: true}.Groups()
	if g != [4]bool{false, true, false, true} {
		t.Errorf("Groups() = %v", g)
	}
}
