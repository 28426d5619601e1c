package measure

import (
	"testing"
	"time"

	"serialperf/clock"
)

func TestAverageMeasurerAutoStarts(t *testing.T) {
	clk := clock.NewFakeClock(clock.NewInstant(0))
	m := NewAverageMeasurer(clk)

	if _, ok := m.ByteRate(); ok {
		t.Fatalf("expected no rate before first byte")
	}

	m.OnByte(10)
	clk.Advance(time.Second)
	m.OnByte(10)

	rate, ok := m.ByteRate()
	if !ok {
		t.Fatalf("expected rate after bytes observed")
	}
	if rate.Bytes() != 20 || rate.Interval() != time.Second {
		t.Fatalf("rate = %+v, want 20 bytes over 1s", rate)
	}
}

func TestAverageMeasurerStartResets(t *testing.T) {
	clk := clock.NewFakeClock(clock.NewInstant(0))
	m := NewAverageMeasurer(clk)

	m.OnByte(100)
	clk.Advance(time.Second)
	m.Start()

	rate, ok := m.ByteRate()
	if !ok {
		t.Fatalf("expected rate after Start")
	}
	if rate.Bytes() != 0 {
		t.Fatalf("Start should discard the previous total, got %d", rate.Bytes())
	}
}

func TestIntervalMeasurerPublishesAtBoundary(t *testing.T) {
	clk := clock.NewFakeClock(clock.NewInstant(0))
	m := NewIntervalMeasurer(clk, time.Second)

	m.OnByte(5)
	m.OnByte(5)
	if m.ByteRate().Bytes() != 0 {
		t.Fatalf("rate should still read 0 before the first boundary")
	}

	clk.Advance(time.Second)
	m.OnByte(3)

	if got := m.ByteRate().Bytes(); got != 10 {
		t.Fatalf("ByteRate() = %d, want 10 (the prior interval's total)", got)
	}
}

func TestIntervalMeasurerPreservesPhaseAcrossDroppedTicks(t *testing.T) {
	clk := clock.NewFakeClock(clock.NewInstant(0))
	m := NewIntervalMeasurer(clk, time.Second)

	m.OnByte(5)
	clk.Advance(5 * time.Second) // several intervals elapse with no polling
	m.OnByte(7)

	if got := m.ByteRate().Bytes(); got != 5 {
		t.Fatalf("ByteRate() = %d, want 5 (the single interval that had bytes)", got)
	}
}

func TestIntervalMeasurerReset(t *testing.T) {
	clk := clock.NewFakeClock(clock.NewInstant(0))
	m := NewIntervalMeasurer(clk, time.Second)

	m.OnByte(5)
	clk.Advance(time.Second)
	m.OnByte(1)

	m.Reset()
	if m.ByteRate().Bytes() != 0 {
		t.Fatalf("expected zero rate after Reset")
	}
}
