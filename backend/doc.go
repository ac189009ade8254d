// Package backend defines the contract the bridge consumes from the Convex
// reactive client, and an in-process implementation of it.
//
// The wire protocol and reactive-query engine are external collaborators: a
// production deployment plugs in a Connector from the websocket client
// module, and the bridge only ever talks through the Client, Subscription and
// FunctionResult types defined here.
//
// LocalBackend is a complete in-memory Client with a registerable function
// table and push-update publication. It backs the package tests and the
// cmd/convex-run development tool, so the whole bridge path can run without a
// network deployment.
package backend
