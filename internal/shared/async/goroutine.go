// Package async provides panic-safe goroutine helpers shared by the
// scheduler, executor and script runtime, so a panic inside a spawned task
// is logged instead of taking down the process.
package async

import (
	"runtime/debug"

	"github.com/agentcore/agentcore/internal/shared/logging"
)

// PanicLogger is the minimal logging surface Recover needs.
type PanicLogger interface {
	Error(format string, args ...any)
}

// Go spawns fn in a new goroutine, recovering any panic and logging it under
// name via logger instead of crashing the process.
func Go(logger PanicLogger, name string, fn func()) {
	go func() {
		defer Recover(logger, name)
		fn()
	}()
}

// Recover must be deferred at the top of a goroutine; it logs and swallows
// any panic.
func Recover(logger PanicLogger, name string) {
	if r := recover(); r != nil {
		if logger == nil {
			logger = logging.NewComponentLogger("async")
		}
		logger.Error("panic in %s: %v\n%s", name, r, debug.Stack())
	}
}
