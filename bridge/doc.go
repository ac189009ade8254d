// Package bridge implements the synchronous-to-asynchronous bridge core.
//
// A Bridge owns a task host, a lazily-connected backend client, and the
// background tasks pumping reactive subscriptions and connectivity states out
// to foreign observers.
//
// # Lifecycle
//
// One Bridge per logical connection. The backend client is not created until
// the first operation that needs it; racing callers share a single in-flight
// connection attempt, and a failed attempt is retried by the next caller
// rather than cached. Close tears down the task host, which stops every
// outstanding subscription pump and the state relay; callers must not assume
// callback delivery after Close returns.
//
// # Operations
//
// Query, Mutation and Action are one-shot: every failure converts
// synchronously into exactly one taxonomy kind and returns to the caller.
// Subscribe establishes the backend subscription synchronously, then pumps
// updates to the QuerySubscriber from a background task until the returned
// handle is cancelled or the stream ends. Failures after the subscribe
// handshake reach the observer through OnError, not a returned error.
//
// The production websocket client is an external collaborator plugged in as a
// backend.Connector; backend.NewLocalBackend provides an in-process one.
package bridge
