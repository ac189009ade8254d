// Package convexmobile provides a synchronous-to-asynchronous bridge that lets
// foreign (mobile) callers drive a remote reactive Convex backend client
// without blocking their calling thread.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	convexmobile/        Root package with foreign capability interfaces
//	├── bridge/          Bridge core: task host, connection cell, subscriptions
//	├── backend/         Backend reactive-client contract and local backend
//	├── values/          JSON <-> backend value marshaling
//	├── errors/          Client-facing error taxonomy
//	├── logging/         Process-wide call-once logging initialization
//	└── cmd/convex-run/  Development tool driving the bridge
//
// # Quick Start
//
// Construct a bridge and run a query:
//
//	b := bridge.New("https://happy-otter-123.convex.cloud", "android-1.0")
//	defer b.Close()
//
//	result, err := b.Query(ctx, "messages:list", map[string]string{
//	    "channel": `"general"`,
//	})
//
// Subscribe to live updates:
//
//	handle, err := b.Subscribe(ctx, "messages:list", args, subscriber)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer handle.Cancel()
//
// # Capability Objects
//
// Foreign callers hand the bridge capability objects: a QuerySubscriber
// receives subscription updates, a StateSubscriber receives connectivity
// transitions, and an AuthTokenProvider supplies refreshed auth tokens on
// connect and reconnect. Each object must remain valid for as long as any
// background task may still invoke it; the bridge holds shared references and
// never borrows.
//
// # Threading
//
// Every backend-facing operation executes on the bridge's own task host, so
// callers on constrained execution contexts (a mobile main thread, a
// single-threaded FFI dispatcher) are never blocked on network I/O beyond the
// method call they chose to await. All public methods are safe for concurrent
// use.
package convexmobile
