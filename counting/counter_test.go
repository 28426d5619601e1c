package counting

import "testing"

func TestMinAllBytesOne(t *testing.T) {
	c := Min(Width4)
	for i := 0; i < 4; i++ {
		if c.Bytes[i] != 0x01 {
			t.Fatalf("byte %d = 0x%02X, want 0x01", i, c.Bytes[i])
		}
	}
}

func TestMaxAllBytesFF(t *testing.T) {
	c := Max(Width4)
	for i := 0; i < 4; i++ {
		if c.Bytes[i] != 0xFF {
			t.Fatalf("byte %d = 0x%02X, want 0xFF", i, c.Bytes[i])
		}
	}
}

func TestNextCarriesAcrossBytes(t *testing.T) {
	c := Counter{Width: Width2, Bytes: [8]byte{0xFF, 0x01}}
	n := Next(c)
	if n.Bytes[0] != 0x01 || n.Bytes[1] != 0x02 {
		t.Fatalf("Next carried wrong: %+v", n.Bytes)
	}
}

func TestNextWrapsMaxToMin(t *testing.T) {
	for _, w := range []Width{Width1, Width2, Width4, Width8} {
		if got := Next(Max(w)); !got.Equal(Min(w)) {
			t.Fatalf("Next(Max(%d)) = %+v, want Min", w, got)
		}
	}
}

func TestPrevWrapsMinToMax(t *testing.T) {
	for _, w := range []Width{Width1, Width2, Width4, Width8} {
		if got := Prev(Min(w)); !got.Equal(Max(w)) {
			t.Fatalf("Prev(Min(%d)) = %+v, want Max", w, got)
		}
	}
}

func TestNextPrevAreInverses(t *testing.T) {
	c := Counter{Width: Width2, Bytes: [8]byte{0x4A, 0x10}}
	if got := Prev(Next(c)); !got.Equal(c) {
		t.Fatalf("Prev(Next(c)) = %+v, want %+v", got, c)
	}
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	for _, w := range []Width{Width1, Width2, Width4} {
		c := Min(w)
		for i := 0; i < 300 && i < int(Cardinality(w)); i++ {
			k, ok := Normalize(c)
			if !ok {
				t.Fatalf("Normalize(%+v) failed", c)
			}
			back := Denormalize(w, k)
			if !back.Equal(c) {
				t.Fatalf("Denormalize(Normalize(%+v)) = %+v", c, back)
			}
			c = Next(c)
		}
	}
}

func TestNormalizeRejectsZeroByte(t *testing.T) {
	c := Counter{Width: Width2, Bytes: [8]byte{0x01, 0x00}}
	if _, ok := Normalize(c); ok {
		t.Fatalf("Normalize accepted a zero byte")
	}
}

func TestNormalizeMinIsZero(t *testing.T) {
	k, ok := Normalize(Min(Width1))
	if !ok || k != 0 {
		t.Fatalf("Normalize(Min) = (%d, %v), want (0, true)", k, ok)
	}
}

func TestNormalizeMaxIsCardinalityMinusOne(t *testing.T) {
	k, ok := Normalize(Max(Width1))
	if !ok || k != Cardinality(Width1)-1 {
		t.Fatalf("Normalize(Max) = (%d, %v), want (%d, true)", k, ok, Cardinality(Width1)-1)
	}
}

func TestCardinalityWidth1(t *testing.T) {
	if got := Cardinality(Width1); got != 255 {
		t.Fatalf("Cardinality(1) = %d, want 255", got)
	}
}

func TestDistanceToSelfIsZero(t *testing.T) {
	for _, w := range []Width{Width1, Width2, Width4, Width8} {
		c := Min(w)
		if d := Distance(c, c); d != 0 {
			t.Fatalf("Distance(c, c) = %d, want 0", d)
		}
	}
}

func TestDistanceToNextIsOne(t *testing.T) {
	for _, w := range []Width{Width1, Width2, Width4, Width8} {
		c := Min(w)
		if d := Distance(c, Next(c)); d != 1 {
			t.Fatalf("Distance(c, Next(c)) = %d, want 1", d)
		}
	}
}

func TestDistanceMaxToMinIsOne(t *testing.T) {
	for _, w := range []Width{Width1, Width2, Width4, Width8} {
		if d := Distance(Max(w), Min(w)); d != 1 {
			t.Fatalf("Distance(Max, Min) = %d, want 1", d)
		}
	}
}

func TestDistanceWidth8NoOverflow(t *testing.T) {
	// Regression: the naive (kb + M - ka) % M formula overflows uint64 for
	// width 8, since M = 255^8 is within a factor of 2 of uint64's max.
	a := Min(Width8)
	b := Max(Width8)
	d := Distance(a, b)
	if d != Cardinality(Width8)-1 {
		t.Fatalf("Distance(Min, Max) = %d, want %d", d, Cardinality(Width8)-1)
	}
}

func TestEqualDiffersOnWidth(t *testing.T) {
	a := Min(Width1)
	b := Min(Width2)
	if a.Equal(b) {
		t.Fatalf("counters of different widths compared equal")
	}
}
