package runtime

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// defaultLogger is the package-wide fallback, used by any Scheduler
// constructed without WithLogger. It is a package-level global like the
// teacher's GetEventLoop singleton, but it is created eagerly in init rather
// than lazily, and holds structured-logging state instead of event-loop
// state.
var defaultLogger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	defaultLogger.Store(&l)
}

// SetDefaultLogger replaces the package-wide fallback logger. Schedulers
// created after this call without an explicit WithLogger option use it.
func SetDefaultLogger(l zerolog.Logger) {
	defaultLogger.Store(&l)
}

func currentDefaultLogger() zerolog.Logger {
	return *defaultLogger.Load()
}
