//go:build unix

package capture

import (
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"
)

// CreatePipe creates (if needed) a named pipe at path for a Recorder to
// stream its pcap frames through live, and opens it for writing. The
// open blocks until a reader (e.g. Wireshark's "Import from Pipe",
// or tcpdump -r) connects, so logger is used to surface that wait on
// the run's own log line prefix instead of the unlabeled global logger.
func CreatePipe(logger *log.Logger, path string) (*os.File, error) {
	if err := syscall.Mkfifo(path, 0600); err != nil {
		if !errors.Is(err, syscall.EEXIST) {
			return nil, fmt.Errorf("mkfifo: %w", err)
		}
		info, statErr := os.Stat(path)
		if statErr != nil {
			return nil, statErr
		}
		if info.Mode()&os.ModeNamedPipe == 0 {
			return nil, fmt.Errorf("%s exists and is not a named pipe", path)
		}
	}
	logger.Printf("capture: waiting for reader on %s...", path)
	f, err := os.OpenFile(path, os.O_WRONLY, 0) // blocks until reader connects
	if err != nil {
		return nil, fmt.Errorf("open capture pipe: %w", err)
	}
	return f, nil
}

// RemovePipe removes the named pipe at path.
func RemovePipe(path string) {
	os.Remove(path)
}
