//go:build !windows

package main

import (
	"os"
	"syscall"
)

// SIGHUP covers a closed terminal, which leaves serve with nowhere to log.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
