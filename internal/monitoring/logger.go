// Package monitoring holds the diagnostic loggers shared by the convviz
// packages.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf reports pipeline progress. It defaults to log.Printf; SetLogger
// replaces it so tests and callers can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var verbose atomic.Bool

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose enables Debugf output.
func SetVerbose(on bool) { verbose.Store(on) }

// Debugf forwards to Logf when verbose output is on. Per-frame detail goes
// here so normal runs only log one line per artifact.
func Debugf(format string, v ...interface{}) {
	if verbose.Load() {
		Logf(format, v...)
	}
}
