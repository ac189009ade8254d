// Package logging provides the process-wide, call-once logging
// initialization for the bridge.
//
// Mobile embedders call Initialize once before constructing a bridge; every
// later call is a no-op. Without initialization all packages log through
// no-op loggers, so the library stays silent by default.
package logging
