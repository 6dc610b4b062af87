// Package build holds the logging backend shared by the subsystems of this
// module. Each package constructs its subsystem logger through NewSubLogger
// so a host application can route all output through a single backend.
package build

import (
	"os"
	"sync"

	"github.com/btcsuite/btclog"
)

var (
	backend     *btclog.Backend
	backendOnce sync.Once
)

// Backend returns the shared logging backend, writing to stdout. The backend
// is created lazily on first use.
func Backend() *btclog.Backend {
	backendOnce.Do(func() {
		b := btclog.NewBackend(os.Stdout)
		backend = b
	})

	return backend
}

// NewSubLogger constructs a new subsystem logger from the shared backend. If
// genSubLogger is non-nil it is used instead, which lets a host application
// plug in its own backend.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	if genSubLogger != nil {
		return genSubLogger(subsystem)
	}

	return Backend().Logger(subsystem)
}
