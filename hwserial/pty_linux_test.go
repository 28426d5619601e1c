//go:build linux

package hwserial

import (
	"os"
	"testing"
	"time"

	"go.bug.st/serial"
	"golang.org/x/sys/unix"

	"serialperf/serialio"
)

// openPTYPair opens a pseudoterminal, returning the master end as a plain
// *os.File (the test's stand-in for the remote peer) and the slave
// device path, which hwserial.Open can open exactly like a real UART.
func openPTYPair(t *testing.T) (master *os.File, slavePath string) {
	t.Helper()

	fd, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("open /dev/ptmx: %v", err)
	}
	if err := unix.Unlockpt(fd); err != nil {
		unix.Close(fd)
		t.Fatalf("unlockpt: %v", err)
	}
	name, err := unix.PtsName(fd)
	if err != nil {
		unix.Close(fd)
		t.Fatalf("ptsname: %v", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		t.Fatalf("set nonblocking: %v", err)
	}

	f := os.NewFile(uintptr(fd), "/dev/ptmx")
	t.Cleanup(func() { _ = f.Close() })
	return f, name
}

func TestAdapterReadByteRoundTrip(t *testing.T) {
	master, slavePath := openPTYPair(t)

	a, err := Open(slavePath, &serial.Mode{BaudRate: 115200})
	if err != nil {
		t.Fatalf("Open(%s): %v", slavePath, err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if _, err := master.Write([]byte{0x42}); err != nil {
		t.Fatalf("master.Write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b, err := a.ReadByte()
		if err == serialio.ErrWouldBlock {
			continue
		}
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		if b != 0x42 {
			t.Fatalf("ReadByte = 0x%02X, want 0x42", b)
		}
		return
	}
	t.Fatalf("timed out waiting for byte over PTY")
}

func TestAdapterWriteByteReachesMaster(t *testing.T) {
	master, slavePath := openPTYPair(t)

	a, err := Open(slavePath, &serial.Mode{BaudRate: 115200})
	if err != nil {
		t.Fatalf("Open(%s): %v", slavePath, err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if err := a.WriteByte(0x99); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}

	buf := make([]byte, 1)
	if err := master.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	if _, err := master.Read(buf); err != nil {
		t.Fatalf("master.Read: %v", err)
	}
	if buf[0] != 0x99 {
		t.Fatalf("master read 0x%02X, want 0x99", buf[0])
	}
}
