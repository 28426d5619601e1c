//go:build !unix

package capture

import (
	"fmt"
	"log"
	"os"
)

// CreatePipe is unsupported outside Unix platforms: serialperf's
// -capture-pipe flag requires a Unix named pipe for live streaming to a
// Recorder, which has no portable equivalent.
func CreatePipe(_ *log.Logger, _ string) (*os.File, error) {
	return nil, fmt.Errorf("named pipes are not supported on this platform")
}

// RemovePipe is a no-op outside Unix platforms.
func RemovePipe(_ string) {}
