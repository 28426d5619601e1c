// Package loopback implements the simplest serial self-test mode: echo
// every received byte back out, tracking bytes instead of framed
// packets.
package loopback

import (
	"serialperf/serialio"
	"serialperf/stats"
)

type state int

const (
	stateReceiving state = iota
	stateHoldingByte
)

// Loopback mirrors each byte it receives back onto the same serial
// endpoint, one byte at a time. If a second byte arrives before the held
// byte has been sent, the held byte is considered lost.
type Loopback struct {
	serial serialio.Serial

	state state
	held  byte

	txStats stats.Statistics
	rxStats stats.Statistics
}

// New creates a Loopback driving serial, recording sent bytes in txStats
// and received bytes in rxStats.
func New(serial serialio.Serial, txStats, rxStats stats.Statistics) *Loopback {
	return &Loopback{serial: serial, txStats: txStats, rxStats: rxStats}
}

// TxStats returns the statistics object tracking bytes echoed back out.
func (l *Loopback) TxStats() stats.Statistics { return l.txStats }

// RxStats returns the statistics object tracking bytes received.
func (l *Loopback) RxStats() stats.Statistics { return l.rxStats }

// Reset returns to the Receiving state and zeros both statistics objects.
// Any currently held, unsent byte is discarded.
func (l *Loopback) Reset() {
	l.state = stateReceiving
	l.held = 0
	l.txStats.Reset()
	l.rxStats.Reset()
}

// RecvNB reads one byte from the serial endpoint. If a byte was already
// held awaiting transmission, it is overwritten and counted as a lost
// byte in txStats — send never caught up before the next byte arrived.
func (l *Loopback) RecvNB() error {
	b, err := l.serial.ReadByte()
	if err != nil {
		if err == serialio.ErrWouldBlock {
			return err
		}
		l.rxStats.AddFailed(1)
		return err
	}

	if l.state == stateHoldingByte {
		l.txStats.AddFailed(1)
	}

	l.held = b
	l.state = stateHoldingByte
	l.rxStats.AddSuccessful(1)
	return nil
}

// SendNB writes the held byte back out, if any. It is a no-op returning
// nil if nothing is currently held.
func (l *Loopback) SendNB() error {
	if l.state != stateHoldingByte {
		return nil
	}

	if err := l.serial.WriteByte(l.held); err != nil {
		if err == serialio.ErrWouldBlock {
			return err
		}
		l.txStats.AddFailed(1)
		return err
	}

	l.state = stateReceiving
	l.txStats.AddSuccessful(1)
	return nil
}

// LoopNB dispatches on the current state: RecvNB while waiting for a
// byte, SendNB while one is held. Unlike Counting, it never calls both
// in the same tick — a held byte is never at risk of being raced by a
// recv in the same call that's supposed to be sending it out.
func (l *Loopback) LoopNB() error {
	switch l.state {
	case stateHoldingByte:
		return l.SendNB()
	default:
		return l.RecvNB()
	}
}
