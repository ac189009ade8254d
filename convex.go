package convexmobile

// ConnectionState describes the backend connection's current condition as
// observed by the websocket layer.
type ConnectionState uint8

const (
	// StateConnecting means a connection attempt is in flight.
	StateConnecting ConnectionState = iota
	// StateConnected means the backend connection is established.
	StateConnected
	// StateDisconnected means the connection is down; the backend client
	// reconnects on its own.
	StateDisconnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// QuerySubscriber receives the results of a reactive query subscription.
//
// Implementations are invoked from the bridge's background tasks, never from
// the caller's goroutine, and must remain valid until the subscription is
// cancelled or the owning bridge is closed.
type QuerySubscriber interface {
	// OnUpdate delivers a new query result as a JSON-encoded string. It is
	// called with the initial result and again each time underlying data
	// changes.
	OnUpdate(value string)

	// OnError delivers a failure on the subscription. errorData carries the
	// JSON encoding of an application error payload when the remote function
	// raised one, or is empty for server-side failures.
	OnError(message string, errorData string)
}

// StateSubscriber receives backend connectivity-state transitions, strictly
// in emission order and never concurrently with itself. A slow subscriber
// stalls the producer rather than losing states.
type StateSubscriber interface {
	OnStateChange(state ConnectionState)
}

// AuthTokenProvider supplies auth tokens on demand. The backend invokes it on
// first connect and on every reconnect, with forceRefresh set when a cached
// token must not be reused.
//
// Returning an empty token puts the client in a logged-out state. Returning
// an error surfaces to the caller as an internal error.
type AuthTokenProvider interface {
	FetchToken(forceRefresh bool) (string, error)
}
