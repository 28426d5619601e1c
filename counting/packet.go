package counting

import "serialperf/crc8"

// Packet is an encoded wire packet: N counter bytes, the 0x00 sentinel,
// and one CRC byte, wholly contained in a fixed-capacity array so that
// encoding never allocates.
type Packet struct {
	buf [MaxPacketSize]byte
	n   int
}

// Bytes returns the encoded packet's bytes, in wire order.
func (p *Packet) Bytes() []byte {
	return p.buf[:p.n]
}

// EncodePacket produces the wire packet for c: [LE counter bytes][0x00
// sentinel][CRC]. When checksumEnabled is false, the CRC byte is set to
// the first counter byte (or 0x00 if the width were ever zero, which
// can't happen for a valid Width) and is expected to be ignored by the
// receiver.
func EncodePacket(c Counter, checksumEnabled bool) Packet {
	var p Packet
	copy(p.buf[:c.Width], c.active())
	p.buf[c.Width] = 0x00

	if checksumEnabled {
		p.buf[c.Width+1] = crc8.Compute(c.active())
	} else if c.Width > 0 {
		p.buf[c.Width+1] = c.Bytes[0]
	} else {
		p.buf[c.Width+1] = 0x00
	}

	p.n = int(c.Width) + 2
	return p
}

// DecodePacket reconstructs the counter from counterBytes, which must be
// exactly w bytes long. If crc is non-nil, the CRC-8/AUTOSAR of
// counterBytes must equal *crc or decoding fails. Decoding failure
// (wrong length or bad CRC) returns false, never an error: a
// desynchronized receiver recovering at the next sentinel is expected
// behavior, not an exceptional one.
func DecodePacket(w Width, counterBytes []byte, crc *byte) (Counter, bool) {
	if len(counterBytes) != int(w) {
		return Counter{}, false
	}
	if crc != nil && crc8.Compute(counterBytes) != *crc {
		return Counter{}, false
	}

	c := Counter{Width: w}
	copy(c.Bytes[:w], counterBytes)
	for _, b := range c.active() {
		if b == 0 {
			return Counter{}, false
		}
	}
	return c, true
}
