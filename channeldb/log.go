package channeldb

import (
	"github.com/btcsuite/btclog"

	"github.com/22388o/eclair/build"
)

// log is the package logger. It can be replaced through UseLogger or
// silenced through DisableLog.
var log btclog.Logger

// By default the package logs through the CHDB subsystem logger of the shared
// build backend, which writes to stdout.
func init() {
	UseLogger(build.NewSubLogger("CHDB", nil))
}

// DisableLog disables all library log output.
func DisableLog() {
	UseLogger(btclog.Disabled)
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}
