// Package meta decodes and encodes the packed "meta" slot carried by Sedona
// components: a 32-bit word holding the component's wiresheet position and
// its four group flags.
//
// Layout, most significant byte first:
//
//	| x (int8) | y (int8) | unused | flags |
//
// Flag bits 0x01..0x08 are groups one to four.
package meta

const (
	flagGroupOne   = 0x01
	flagGroupTwo   = 0x02
	flagGroupThree = 0x04
	flagGroupFour  = 0x08
)

// Meta is the decoded form of a meta slot.
type Meta struct {
	X, Y       int
	GroupOne   bool
	GroupTwo   bool
	GroupThree bool
	GroupFour  bool
}

// Unpack decodes v.
func Unpack(v int32) Meta {
	return Meta{
		X:          int(v >> 24),
		Y:          int((v << 8) >> 24),
		GroupOne:   v&flagGroupOne != 0,
		GroupTwo:   v&flagGroupTwo != 0,
		GroupThree: v&flagGroupThree != 0,
		GroupFour:  v&flagGroupFour != 0,
	}
}

// Pack encodes m. X and Y are truncated to 8 bits each, so
// Unpack(m.Pack()) == m for X and Y in [-128, 127].
func (m Meta) Pack() int32 {
	var flags int32
	if m.GroupOne {
		flags |= flagGroupOne
	}
	if m.GroupTwo {
		flags |= flagGroupTwo
	}
	if m.GroupThree {
		flags |= flagGroupThree
	}
	if m.GroupFour {
		flags |= flagGroupFour
	}
	return flags | int32(m.X)<<24 | int32(m.Y&0xff)<<16
}

// Groups returns the four flags in order.
func (m Meta) Groups() [4]bool {
	return [4]bool{m.GroupOne, m.GroupTwo, m.GroupThree, m.GroupFour}
}
