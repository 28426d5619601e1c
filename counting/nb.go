package counting

import (
	"serialperf/serialio"
	"serialperf/stats"
)

// Counting drives the counting protocol over one serial endpoint,
// composing the TX and RX state machines with three statistics objects:
// bytes sent, bytes received, and inferred packet loss.
type Counting struct {
	serial serialio.Serial

	width           Width
	checksumEnabled bool

	tx *TxState
	rx *RxState

	txStats stats.Statistics
	rxStats stats.Statistics
}

// New creates a Counting orchestrator for w-byte counters with CRC
// validation enabled, using the given statistics for tx, rx, and loss.
func New(serial serialio.Serial, w Width, txStats, rxStats, lossStats stats.Statistics) *Counting {
	return newCounting(serial, w, true, txStats, rxStats, lossStats)
}

// NewWithoutChecksum is like New but disables CRC validation on both
// sides: the CRC byte is still framed on the wire but never checked.
func NewWithoutChecksum(serial serialio.Serial, w Width, txStats, rxStats, lossStats stats.Statistics) *Counting {
	return newCounting(serial, w, false, txStats, rxStats, lossStats)
}

func newCounting(serial serialio.Serial, w Width, checksumEnabled bool, txStats, rxStats, lossStats stats.Statistics) *Counting {
	return &Counting{
		serial:          serial,
		width:           w,
		checksumEnabled: checksumEnabled,
		tx:              NewTxState(w, checksumEnabled),
		rx:              NewRxState(w, checksumEnabled, lossStats),
		txStats:         txStats,
		rxStats:         rxStats,
	}
}

// TxStats returns the statistics object tracking bytes written.
func (c *Counting) TxStats() stats.Statistics { return c.txStats }

// RxStats returns the statistics object tracking bytes read.
func (c *Counting) RxStats() stats.Statistics { return c.rxStats }

// LossStats returns the statistics object tracking inferred packet loss.
func (c *Counting) LossStats() stats.Statistics { return c.rx.LossStats() }

// Reset restores both state machines to their initial state and zeros all
// three statistics objects.
func (c *Counting) Reset() {
	c.tx.Reset()
	c.rx.Reset()
	c.txStats.Reset()
	c.rxStats.Reset()
	c.rx.LossStats().Reset()
}

// SendNB asks the TX state machine for the next byte and writes it to the
// serial endpoint. On success the byte is consumed and tx_stats records
// one successful byte. On serialio.ErrWouldBlock, nothing is consumed and
// the error is returned unchanged. On any other error, tx_stats records
// one failed byte and the error is returned.
func (c *Counting) SendNB() error {
	b := c.tx.Peek()
	if err := c.serial.WriteByte(b); err != nil {
		if err == serialio.ErrWouldBlock {
			return err
		}
		c.txStats.AddFailed(1)
		return err
	}
	c.tx.Take()
	c.txStats.AddSuccessful(1)
	return nil
}

// RecvNB reads one byte from the serial endpoint and feeds it to the RX
// state machine. On success rx_stats records one successful byte. On
// serialio.ErrWouldBlock, the error is returned unchanged. On any other
// error, rx_stats records one failed byte.
func (c *Counting) RecvNB() error {
	b, err := c.serial.ReadByte()
	if err != nil {
		if err == serialio.ErrWouldBlock {
			return err
		}
		c.rxStats.AddFailed(1)
		return err
	}
	c.rx.OnByteReceived(b)
	c.rxStats.AddSuccessful(1)
	return nil
}

// LoopNB calls RecvNB then SendNB in one tick, draining the receive side
// first to reduce back-pressure on the peer before contributing more
// load. A non-WouldBlock error from either side is returned immediately
// without letting a success on the other side hide it. WouldBlock from
// both sides yields WouldBlock; WouldBlock from exactly one side, with
// the other succeeding, yields a nil error.
func (c *Counting) LoopNB() error {
	recvErr := c.RecvNB()
	if recvErr != nil && recvErr != serialio.ErrWouldBlock {
		return recvErr
	}

	sendErr := c.SendNB()
	if sendErr != nil && sendErr != serialio.ErrWouldBlock {
		return sendErr
	}

	if recvErr == serialio.ErrWouldBlock && sendErr == serialio.ErrWouldBlock {
		return serialio.ErrWouldBlock
	}
	return nil
}
