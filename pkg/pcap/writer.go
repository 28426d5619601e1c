// Package pcap writes libpcap-format capture files for capture.Recorder's
// direction-tagged byte frames (see serialperf/capture), so a recorded
// session can be opened directly in Wireshark or tcpdump.
package pcap

import (
	"encoding/binary"
	"io"
	"time"
)

const (
	magicNumber  uint32 = 0xa1b2c3d4
	versionMajor uint16 = 2
	versionMinor uint16 = 4

	// frameSnapLen is generous for capture.Recorder's two-byte frames
	// (one direction tag, one data byte) but left at the conventional
	// libpcap default rather than hard-coded to 2, so a capture file
	// stays valid if a future frame carries more than a single byte.
	frameSnapLen uint32 = 65535

	// dltDirectionTagged is a libpcap user-defined link-layer type
	// (DLT_USER0): each captured frame is one serial byte prefixed with
	// a capture.Direction tag rather than a standards-defined protocol,
	// so no registered DLT applies.
	dltDirectionTagged uint32 = 147
)

type globalHeader struct {
	Magic        uint32
	VersionMajor uint16
	VersionMinor uint16
	ThisZone     int32
	SigFigs      uint32
	SnapLen      uint32
	LinkType     uint32
}

type packetHeader struct {
	TsSec   uint32
	TsUsec  uint32
	CapLen  uint32
	OrigLen uint32
}

// Writer appends direction-tagged frames to a libpcap capture stream.
type Writer struct {
	out io.Writer
}

// NewWriter writes the 24-byte pcap global header to out and returns a
// Writer ready to append frames via WritePacket.
func NewWriter(out io.Writer) (*Writer, error) {
	hdr := globalHeader{
		Magic:        magicNumber,
		VersionMajor: versionMajor,
		VersionMinor: versionMinor,
		SnapLen:      frameSnapLen,
		LinkType:     dltDirectionTagged,
	}
	if err := binary.Write(out, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	return &Writer{out: out}, nil
}

// WritePacket appends one frame captured at ts. capture.Recorder calls
// this with a 2-byte frame (direction tag, data byte) per successful
// ReadByte/WriteByte, but any payload length is accepted.
func (w *Writer) WritePacket(ts time.Time, frame []byte) error {
	hdr := packetHeader{
		TsSec:   uint32(ts.Unix()),
		TsUsec:  uint32(ts.Nanosecond() / 1000),
		CapLen:  uint32(len(frame)),
		OrigLen: uint32(len(frame)),
	}
	if err := binary.Write(w.out, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	_, err := w.out.Write(frame)
	return err
}
