// Package counting implements the counting packet protocol: a
// non-zero-byte counter, its wire encoding, and the TX/RX state machines
// and orchestrator that drive it over a non-blocking serial endpoint.
package counting

import "fmt"

// Width is a counter's byte width. Only 1, 2, 4, and 8 are valid.
type Width int

const (
	Width1 Width = 1
	Width2 Width = 2
	Width4 Width = 4
	Width8 Width = 8
)

// MaxPacketSize is the largest possible wire packet: 8 counter bytes, the
// sentinel, and the CRC byte.
const MaxPacketSize = 8 + 2

func (w Width) valid() bool {
	switch w {
	case Width1, Width2, Width4, Width8:
		return true
	default:
		return false
	}
}

// Counter is a fixed-width little-endian integer in which every byte is
// non-zero (1..=255). Width is tagged explicitly rather than expressed as
// a Go generic parameter: with only four legal widths, a fixed 8-byte
// array sized for the widest case is simpler to construct and compare in
// tests than a type-parameterized counter would be.
type Counter struct {
	Width Width
	Bytes [8]byte
}

// Min returns the minimum valid counter of the given width: every byte
// equal to 0x01.
func Min(w Width) Counter {
	if !w.valid() {
		panic(fmt.Sprintf("counting: invalid counter width %d", w))
	}
	c := Counter{Width: w}
	for i := 0; i < int(w); i++ {
		c.Bytes[i] = 0x01
	}
	return c
}

// Max returns the maximum valid counter of the given width: every byte
// equal to 0xFF.
func Max(w Width) Counter {
	if !w.valid() {
		panic(fmt.Sprintf("counting: invalid counter width %d", w))
	}
	c := Counter{Width: w}
	for i := 0; i < int(w); i++ {
		c.Bytes[i] = 0xFF
	}
	return c
}

// active returns the slice of c.Bytes actually in use.
func (c Counter) active() []byte {
	return c.Bytes[:c.Width]
}

// Equal reports whether c and other have the same width and bytes.
func (c Counter) Equal(other Counter) bool {
	if c.Width != other.Width {
		return false
	}
	for i := 0; i < int(c.Width); i++ {
		if c.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}

// Next returns the counter one step after c: little-endian increment
// where a byte at 0xFF wraps to 0x01 and carries into the next byte.
// Next(Max(w)) == Min(w).
func Next(c Counter) Counter {
	out := c
	for i := 0; i < int(c.Width); i++ {
		if out.Bytes[i] == 0xFF {
			out.Bytes[i] = 0x01
			continue
		}
		out.Bytes[i]++
		return out
	}
	return out
}

// Prev returns the counter one step before c: mirror image of Next.
// Prev(Min(w)) == Max(w).
func Prev(c Counter) Counter {
	out := c
	for i := 0; i < int(c.Width); i++ {
		if out.Bytes[i] <= 0x01 {
			out.Bytes[i] = 0xFF
			continue
		}
		out.Bytes[i]--
		return out
	}
	return out
}

// pow255 holds 255^0 .. 255^7 so Normalize/Denormalize avoid recomputing
// powers for every call.
var pow255 = func() [8]uint64 {
	var p [8]uint64
	p[0] = 1
	for i := 1; i < 8; i++ {
		p[i] = p[i-1] * 255
	}
	return p
}()

// Cardinality returns the number of valid counter values for width w:
// 255^w.
func Cardinality(w Width) uint64 {
	return pow255[w-1] * 255
}

// Normalize maps a valid counter to its index k in [0, 255^N - 1]. It
// returns false if any byte of c is zero (not a valid counter).
func Normalize(c Counter) (uint64, bool) {
	var k uint64
	for i := 0; i < int(c.Width); i++ {
		b := c.Bytes[i]
		if b == 0 {
			return 0, false
		}
		k += uint64(b-1) * pow255[i]
	}
	return k, true
}

// Denormalize is Normalize's inverse: it reconstructs the counter with
// index k for width w.
func Denormalize(w Width, k uint64) Counter {
	c := Counter{Width: w}
	for i := 0; i < int(w); i++ {
		c.Bytes[i] = byte((k/pow255[i])%255) + 1
	}
	return c
}

// Distance returns the forward distance from a to b: the number of Next
// steps needed to reach b starting at a, taken modulo the counter space's
// cardinality (255^N). Distance(c, Next(c)) == 1 for every c, and
// Distance(Max(w), Min(w)) == 1.
//
// ka and kb are both strictly less than the cardinality M, so computing
// the modular difference branch-wise (rather than as (kb+M-ka)%M) avoids
// a uint64 overflow that the additive form would hit once M exceeds half
// of uint64's range, which 255^8 does.
func Distance(a, b Counter) uint64 {
	ka, _ := Normalize(a)
	kb, _ := Normalize(b)
	if kb >= ka {
		return kb - ka
	}
	m := Cardinality(a.Width)
	return m - (ka - kb)
}
