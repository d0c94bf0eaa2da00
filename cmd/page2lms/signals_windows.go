//go:build windows

package main

import "os"

// shutdownSignals cancel a run. SIGTERM is not delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
