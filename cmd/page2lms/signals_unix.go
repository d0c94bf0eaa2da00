//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals cancel a run. SIGHUP covers a closed terminal.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
