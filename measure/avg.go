// Package measure implements the two byte-rate measurer variants: an
// average-since-start measurer and a fixed-interval sliding-reset
// measurer.
package measure

import (
	"serialperf/byterate"
	"serialperf/clock"
)

// AverageMeasurer reports the average byte rate since it was started. It
// auto-starts on the first byte observed.
type AverageMeasurer struct {
	clk     clock.Clock
	running bool
	start   clock.Instant
	total   uint64
}

// NewAverageMeasurer creates a measurer using clk as its time source.
func NewAverageMeasurer(clk clock.Clock) *AverageMeasurer {
	return &AverageMeasurer{clk: clk}
}

// Start (re)starts the measurer, discarding any accumulated total.
func (m *AverageMeasurer) Start() {
	m.running = true
	m.start = m.clk.Now()
	m.total = 0
}

// IsStarted reports whether the measurer has begun accumulating.
func (m *AverageMeasurer) IsStarted() bool {
	return m.running
}

// OnByte records n additional bytes observed, auto-starting the measurer
// if this is the first observation.
func (m *AverageMeasurer) OnByte(n uint64) {
	if !m.running {
		m.Start()
	}
	m.total += n
}

// ByteRate returns the rate observed since Start, or false if the
// measurer has never been started.
func (m *AverageMeasurer) ByteRate() (byterate.ByteRate, bool) {
	if !m.running {
		return byterate.ByteRate{}, false
	}
	elapsed := m.clk.Now().DurationSince(m.start)
	return byterate.New(m.total, elapsed), true
}
