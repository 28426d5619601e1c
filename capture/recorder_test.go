package capture

import (
	"bytes"
	"testing"

	"serialperf/pkg/pcap"
	"serialperf/serialio"
)

func TestRecorderTagsDirectionOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	pw, err := pcap.NewWriter(&buf)
	if err != nil {
		t.Fatalf("pcap.NewWriter: %v", err)
	}

	pipe := serialio.NewPipe(4)
	_ = pipe.WriteByte(0x42)

	r := NewRecorder(pipe, pw)

	b, err := r.ReadByte()
	if err != nil || b != 0x42 {
		t.Fatalf("ReadByte = (0x%02X, %v), want (0x42, nil)", b, err)
	}
	if err := r.WriteByte(0x7A); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}

	// 24-byte global header + two 16-byte packet headers + two 2-byte
	// payloads.
	want := 24 + (16+2)*2
	if buf.Len() != want {
		t.Fatalf("captured %d bytes, want %d", buf.Len(), want)
	}
}

func TestRecorderSkipsWouldBlock(t *testing.T) {
	var buf bytes.Buffer
	pw, _ := pcap.NewWriter(&buf)

	pipe := serialio.NewPipe(1)
	r := NewRecorder(pipe, pw)

	if _, err := r.ReadByte(); err != serialio.ErrWouldBlock {
		t.Fatalf("ReadByte() = %v, want ErrWouldBlock", err)
	}
	if buf.Len() != 24 {
		t.Fatalf("captured %d bytes after WouldBlock, want only the 24-byte header", buf.Len())
	}
}
