package lifecycle

import (
	"fmt"
	"os"
	"strconv"
)

// Send readiness signal to file descriptor in parent-supplied environment variable file descriptor.
// Returns nil if env var does not exist.
func ReadinessSender() (err error) {
	fdStr := os.Getenv(EnvNameReadinessFD)
	if fdStr == "" {
		return // not launched by a supervisor
	}

	fd, err := strconv.Atoi(fdStr)
	if err != nil {
		err = fmt.Errorf("invalid %s: %v", EnvNameReadinessFD, err)
		return
	}

	readyPipe := os.NewFile(uintptr(fd), "ready")
	if readyPipe == nil {
		err = fmt.Errorf("failed to open %s=%d", EnvNameReadinessFD, fd)
		return
	}
	defer readyPipe.Close()

	// Send readiness message
	msg := []byte(ReadyMessage)
	for len(msg) > 0 {
		var bytesWritten int
		bytesWritten, err = readyPipe.Write(msg)
		if err != nil {
			err = fmt.Errorf("failed to send readiness message: %v", err)
			return
		}
		msg = msg[bytesWritten:]
	}

	return
}
