package stats

import (
	"time"

	"serialperf/byterate"
	"serialperf/clock"
	"serialperf/measure"
)

// IntervalRate wraps two interval measurers, one tracking successful
// bytes and one tracking failed bytes, each republishing at the same
// fixed interval.
type IntervalRate struct {
	successful *measure.IntervalMeasurer
	failed     *measure.IntervalMeasurer
}

// NewIntervalRate creates an IntervalRate backed by clk, republishing
// every interval.
func NewIntervalRate(clk clock.Clock, interval time.Duration) *IntervalRate {
	return &IntervalRate{
		successful: measure.NewIntervalMeasurer(clk, interval),
		failed:     measure.NewIntervalMeasurer(clk, interval),
	}
}

// AddSuccessful records count successful bytes.
func (r *IntervalRate) AddSuccessful(count uint64) {
	r.successful.OnByte(count)
}

// AddFailed records count failed bytes.
func (r *IntervalRate) AddFailed(count uint64) {
	r.failed.OnByte(count)
}

// Reset re-anchors both measurers.
func (r *IntervalRate) Reset() {
	r.successful.Reset()
	r.failed.Reset()
}

// SuccessRate returns the most recently published successful byte rate.
func (r *IntervalRate) SuccessRate() byterate.ByteRate {
	return r.successful.ByteRate()
}

// FailedRate returns the most recently published failed byte rate.
func (r *IntervalRate) FailedRate() byterate.ByteRate {
	return r.failed.ByteRate()
}
