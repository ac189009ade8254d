package logging

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/get-convex/convex-mobile/backend"
	"github.com/get-convex/convex-mobile/bridge"
)

var (
	initialized atomic.Bool
	logger      atomic.Pointer[zap.Logger]
)

// Initialize sets up logging with a development configuration. Idempotent:
// only the first call has any effect.
func Initialize() {
	cfg := zap.NewDevelopmentConfig()
	InitializeWith(cfg)
}

// InitializeWith sets up logging from an explicit zap configuration and
// installs the resulting logger into the library's packages. Idempotent:
// only the first call has any effect.
func InitializeWith(cfg zap.Config) {
	if !initialized.CompareAndSwap(false, true) {
		return
	}
	l, err := cfg.Build()
	if err != nil {
		// A broken config must not take the process down; stay silent.
		l = zap.NewNop()
	}
	install(l)
}

// InitializeWithLogger installs a caller-built logger, for embedders that
// route logs into a platform sink (logcat, os_log). Idempotent.
func InitializeWithLogger(l *zap.Logger) {
	if !initialized.CompareAndSwap(false, true) {
		return
	}
	install(l)
}

func install(l *zap.Logger) {
	logger.Store(l)
	bridge.SetLogger(l)
	backend.SetLogger(l)
}

// Logger returns the installed logger, or a no-op logger when Initialize was
// never called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}
