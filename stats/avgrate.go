package stats

import (
	"serialperf/byterate"
	"serialperf/clock"
	"serialperf/measure"
)

// AvgRate wraps two average-since-start measurers, one tracking
// successful bytes and one tracking failed bytes. Whenever either side
// receives its first byte, the other side is started too, so the two
// rates share the same epoch and can be meaningfully compared.
type AvgRate struct {
	clk        clock.Clock
	successful *measure.AverageMeasurer
	failed     *measure.AverageMeasurer
}

// NewAvgRate creates an AvgRate backed by clk.
func NewAvgRate(clk clock.Clock) *AvgRate {
	return &AvgRate{
		clk:        clk,
		successful: measure.NewAverageMeasurer(clk),
		failed:     measure.NewAverageMeasurer(clk),
	}
}

// AddSuccessful records count successful bytes.
func (a *AvgRate) AddSuccessful(count uint64) {
	a.successful.OnByte(count)
	if !a.failed.IsStarted() {
		a.failed.Start()
	}
}

// AddFailed records count failed bytes.
func (a *AvgRate) AddFailed(count uint64) {
	a.failed.OnByte(count)
	if !a.successful.IsStarted() {
		a.successful.Start()
	}
}

// Reset restarts both measurers from the current instant.
func (a *AvgRate) Reset() {
	a.successful.Start()
	a.failed.Start()
}

// SuccessRate returns the average successful byte rate since start.
func (a *AvgRate) SuccessRate() (byterate.ByteRate, bool) {
	return a.successful.ByteRate()
}

// FailedRate returns the average failed byte rate since start.
func (a *AvgRate) FailedRate() (byterate.ByteRate, bool) {
	return a.failed.ByteRate()
}
