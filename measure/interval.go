package measure

import (
	"time"

	"serialperf/byterate"
	"serialperf/clock"
)

// IntervalMeasurer publishes a byte rate only at fixed interval
// boundaries: bytes observed during the current interval accumulate
// silently, and are only exposed through ByteRate once the interval timer
// fires, at which point the accumulated count becomes the published rate
// and a fresh interval starts counting from zero.
//
// Publishing only at boundaries produces a stable, low-noise readout, at
// the cost of up to one interval of reporting lag.
type IntervalMeasurer struct {
	clk      clock.Clock
	interval time.Duration

	current  byterate.ByteRate
	output   byterate.ByteRate
	deadline clock.Instant
}

// NewIntervalMeasurer creates a measurer that republishes its output rate
// every interval.
func NewIntervalMeasurer(clk clock.Clock, interval time.Duration) *IntervalMeasurer {
	m := &IntervalMeasurer{
		clk:      clk,
		interval: interval,
		current:  byterate.New(0, interval),
		output:   byterate.New(0, interval),
	}
	m.deadline = clk.Now().Add(interval)
	return m
}

// OnByte records n additional bytes observed. If the interval timer has
// expired, the accumulated current rate is published as the output rate
// first, the accumulator is zeroed, and the deadline is advanced by whole
// intervals until it is back in the future — preserving phase instead of
// granting a bonus interval to a caller that was late to poll.
func (m *IntervalMeasurer) OnByte(n uint64) {
	if m.timerExpired() {
		m.output = m.current
		m.current = m.current.SetBytes(0)
		m.advanceDeadline()
	}
	m.current = m.current.IncrBytes(n)
}

// ByteRate returns the most recently published rate.
func (m *IntervalMeasurer) ByteRate() byterate.ByteRate {
	return m.output
}

// Reset zeros both the accumulator and the published rate and re-anchors
// the deadline to the current instant.
func (m *IntervalMeasurer) Reset() {
	m.current = byterate.New(0, m.interval)
	m.output = byterate.New(0, m.interval)
	m.deadline = m.clk.Now().Add(m.interval)
}

func (m *IntervalMeasurer) timerExpired() bool {
	return !m.clk.Now().Before(m.deadline)
}

func (m *IntervalMeasurer) advanceDeadline() {
	now := m.clk.Now()
	for !now.Before(m.deadline) {
		next, ok := m.deadline.CheckedAdd(m.interval)
		if !ok {
			// The deadline has wrapped the instant representation; pin it
			// to now plus one interval rather than spinning forever.
			m.deadline = now.Add(m.interval)
			return
		}
		m.deadline = next
	}
}
