// Package byterate holds the immutable ByteRate value type: a number of
// bytes observed over a duration, with conversions to bytes-per-second at
// a few different precisions.
package byterate

import "time"

// ByteRate pairs a byte count with the interval it was observed over.
type ByteRate struct {
	bytes    uint64
	interval time.Duration
}

// New creates a ByteRate of bytes over interval.
func New(bytes uint64, interval time.Duration) ByteRate {
	return ByteRate{bytes: bytes, interval: interval}
}

// Bytes returns the byte count.
func (r ByteRate) Bytes() uint64 { return r.bytes }

// SetBytes returns a copy of r with the byte count replaced.
func (r ByteRate) SetBytes(bytes uint64) ByteRate {
	r.bytes = bytes
	return r
}

// Interval returns the observation interval.
func (r ByteRate) Interval() time.Duration { return r.interval }

// SetInterval returns a copy of r with the interval replaced.
func (r ByteRate) SetInterval(interval time.Duration) ByteRate {
	r.interval = interval
	return r
}

// IncrBytes returns a copy of r with n added to the byte count.
func (r ByteRate) IncrBytes(n uint64) ByteRate {
	r.bytes += n
	return r
}

// BPSInteger returns bytes-per-second as an integer, trying nanosecond,
// microsecond, millisecond, then second precision in that order and
// returning the first floor-division that doesn't collapse to a
// zero-denominator or overflow. It returns false when interval is zero,
// and in the (rare) case where every precision either rounds the interval
// to zero or overflows uint64.
//
// The rationale for trying the finest precision first: a byte observed
// over 100ms is 10 bytes/sec, not 0 bytes/sec, which is what naively
// dividing by whole seconds would report.
func (r ByteRate) BPSInteger() (uint64, bool) {
	if r.interval == 0 {
		return 0, false
	}
	if v, ok := r.bpsAtUnit(time.Nanosecond); ok {
		return v, true
	}
	if v, ok := r.bpsAtUnit(time.Microsecond); ok {
		return v, true
	}
	if v, ok := r.bpsAtUnit(time.Millisecond); ok {
		return v, true
	}
	return r.bpsAtUnit(time.Second)
}

// bpsAtUnit computes floor(bytes * unitsPerSecond(unit) / intervalInUnits),
// returning false if intervalInUnits rounds to zero or the multiplication
// would overflow uint64.
func (r ByteRate) bpsAtUnit(unit time.Duration) (uint64, bool) {
	intervalInUnit := uint64(r.interval / unit)
	if intervalInUnit == 0 {
		return 0, false
	}
	unitsPerSecond := uint64(time.Second / unit)

	const maxUint64 = ^uint64(0)
	if r.bytes != 0 && unitsPerSecond > maxUint64/r.bytes {
		return 0, false
	}
	return (r.bytes * unitsPerSecond) / intervalInUnit, true
}

// BPSFloat32 returns bytes-per-second as a float32. It returns false if the
// interval is zero, the interval rounds to a negligible number of seconds,
// or the byte count doesn't fit in the precision float32 can represent
// exactly (bounded to uint16 max, matching the source's conservative bound).
func (r ByteRate) BPSFloat32() (float32, bool) {
	const epsilon = 1e-9
	if r.interval == 0 || r.bytes > uint64(^uint16(0)) {
		return 0, false
	}
	secs := float32(r.interval.Seconds())
	if secs <= epsilon {
		return 0, false
	}
	return float32(r.bytes) / secs, true
}

// BPSFloat64 is BPSFloat32's higher-precision counterpart, bounded to
// uint32 max instead of uint16 max.
func (r ByteRate) BPSFloat64() (float64, bool) {
	const epsilon = 1e-9
	if r.interval == 0 || r.bytes > uint64(^uint32(0)) {
		return 0, false
	}
	secs := r.interval.Seconds()
	if secs <= epsilon {
		return 0, false
	}
	return float64(r.bytes) / secs, true
}
