// Package limit implements the polling byte-rate limiter and the
// rate-limited serial wrapper built on top of it.
package limit

import (
	"errors"
	"time"

	"serialperf/byterate"
	"serialperf/clock"
)

// ErrTimerOverflow is returned when the limiter's window deadline would
// overflow the clock's instant representation.
var ErrTimerOverflow = errors.New("limit: timer deadline overflow")

type state int

const (
	stateIdle state = iota
	stateRunning
	stateLimiting
	stateUnlimited
)

// PollingLimiter governs how many bytes may be sent inside a sliding
// window by being polled before every send: CanSend asks whether a send
// would fit, Send records that a byte was in fact sent.
type PollingLimiter struct {
	clk     clock.Clock
	maxRate byterate.ByteRate

	state     state
	remaining uint64

	deadline clock.Instant
}

// NewPollingLimiter creates a limiter governing at most maxRate.Bytes()
// sends per maxRate.Interval(). An interval of zero means unlimited; a
// byte budget of zero with a nonzero interval means permanently blocked
// until an operator calls Restart.
func NewPollingLimiter(maxRate byterate.ByteRate, clk clock.Clock) *PollingLimiter {
	l := &PollingLimiter{clk: clk}
	l.SetByteRate(maxRate)
	return l
}

// SetByteRate replaces the configured rate and resets the limiter to its
// initial state for that rate.
func (l *PollingLimiter) SetByteRate(maxRate byterate.ByteRate) {
	l.maxRate = maxRate
	switch {
	case maxRate.Interval() == 0:
		l.state = stateUnlimited
	case maxRate.Bytes() == 0:
		l.state = stateLimiting
	default:
		l.state = stateIdle
	}
	l.remaining = 0
	l.deadline = l.clk.Now()
}

// CanSend reports whether calling Send now would record a send without
// exceeding the configured budget.
func (l *PollingLimiter) CanSend() bool {
	switch l.state {
	case stateUnlimited:
		return true
	case stateIdle:
		return true
	case stateRunning:
		if l.remaining > 0 {
			return true
		}
		return l.timerExpired()
	case stateLimiting:
		if l.maxRate.Bytes() == 0 {
			return false
		}
		return l.timerExpired()
	default:
		return false
	}
}

// Send records one byte as sent. It returns true while more sends remain
// within the current window, false on the send that exhausts it.
func (l *PollingLimiter) Send() (bool, error) {
	switch l.state {
	case stateUnlimited:
		return true, nil
	case stateIdle:
		return l.sendIdle()
	case stateRunning:
		return l.sendRunning()
	case stateLimiting:
		return l.sendLimiting()
	default:
		return false, nil
	}
}

// Restart forcefully opens a fresh budget window aligned to the current
// instant.
func (l *PollingLimiter) Restart() error {
	if _, err := l.fitTimerDuration(); err != nil {
		return err
	}
	l.remaining = l.maxRate.Bytes()
	l.state = stateRunning
	return nil
}

// DurationUntilReset returns the time until the next window boundary, or
// false when the limiter is unlimited.
func (l *PollingLimiter) DurationUntilReset() (time.Duration, bool) {
	if l.state == stateUnlimited {
		return 0, false
	}
	d := l.deadline.DurationSince(l.clk.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

func (l *PollingLimiter) sendIdle() (bool, error) {
	now := l.clk.Now()
	end, ok := now.CheckedAdd(l.maxRate.Interval())
	if !ok {
		return false, ErrTimerOverflow
	}
	l.deadline = end
	l.remaining = l.maxRate.Bytes()
	l.state = stateRunning
	return l.sendRunning()
}

func (l *PollingLimiter) sendRunning() (bool, error) {
	if l.timerExpired() {
		if err := l.Restart(); err != nil {
			return false, err
		}
		return l.Send()
	}

	if l.remaining > 1 {
		l.remaining--
		return true, nil
	}
	l.remaining = 0
	l.state = stateLimiting
	return false, nil
}

func (l *PollingLimiter) sendLimiting() (bool, error) {
	if l.maxRate.Bytes() == 0 {
		return false, nil
	}
	if !l.timerExpired() {
		return false, nil
	}
	if err := l.Restart(); err != nil {
		return false, err
	}
	return l.Send()
}

func (l *PollingLimiter) timerExpired() bool {
	return !l.clk.Now().Before(l.deadline)
}

// fitTimerDuration advances the window deadline by whole intervals until
// it is strictly in the future, preserving phase across dropped ticks
// instead of granting a bonus window to a late caller. The loop is bounded
// by the clock's instant range: it can only iterate as many times as it
// takes to walk from the stale deadline to "now", and CheckedAdd surfaces
// ErrTimerOverflow instead of spinning forever if that walk would wrap the
// representation.
func (l *PollingLimiter) fitTimerDuration() (time.Duration, error) {
	now := l.clk.Now()
	interval := l.maxRate.Interval()

	end := l.deadline
	for !now.Before(end) {
		next, ok := end.CheckedAdd(interval)
		if !ok {
			return 0, ErrTimerOverflow
		}
		end = next
	}
	l.deadline = end
	return end.DurationSince(now), nil
}
