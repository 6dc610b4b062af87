package routing

import (
	"github.com/btcsuite/btclog"

	"github.com/22388o/eclair/build"
)

// log is the package logger. It can be replaced through UseLogger or
// silenced through DisableLog.
var log btclog.Logger

// By default the package logs through the CRTR subsystem logger of the shared
// build backend, which writes to stdout.
func init() {
	UseLogger(build.NewSubLogger("CRTR", nil))
}

// DisableLog disables all library log output.
func DisableLog() {
	UseLogger(btclog.Disabled)
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// logClosure is used to provide a closure over expensive logging operations
// so they aren't performed when the logging level doesn't warrant it.
type logClosure func() string

// String invokes the underlying function and returns the result.
func (c logClosure) String() string {
	return c()
}

// newLogClosure returns a new closure over a function that returns a string
// which itself provides a Stringer interface so that it can be used with the
// logging system.
func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}
