package backend

import (
	"context"

	convexmobile "github.com/get-convex/convex-mobile"
	"github.com/get-convex/convex-mobile/values"
)

// TokenFetcher supplies an auth token on demand. The backend invokes it on
// first connect and on every reconnect. An empty token means logged out.
type TokenFetcher func(ctx context.Context, forceRefresh bool) (string, error)

// Options carries the connection parameters the bridge hands to a Connector.
type Options struct {
	// States, when non-nil, receives connectivity-state transitions. The
	// channel is bounded; the producer blocks on a slow consumer rather than
	// dropping states.
	States chan<- convexmobile.ConnectionState

	DeploymentURL string
	ClientID      string
}

// Connector establishes a connection to a Convex deployment. The production
// websocket client provides one; LocalBackend.Connector returns an in-process
// one.
type Connector func(ctx context.Context, opts Options) (Client, error)

// Client is a connected Convex backend client. Implementations must be safe
// for concurrent use: the bridge shares one client handle across all
// operations without locking.
type Client interface {
	// Query executes a one-shot query.
	Query(ctx context.Context, name string, args values.Args) (FunctionResult, error)

	// Mutation runs a mutation.
	Mutation(ctx context.Context, name string, args values.Args) (FunctionResult, error)

	// Action runs an action.
	Action(ctx context.Context, name string, args values.Args) (FunctionResult, error)

	// Subscribe establishes a reactive query subscription. The request is
	// validated synchronously: an unknown function name fails here, not on
	// the update stream.
	Subscribe(ctx context.Context, name string, args values.Args) (Subscription, error)

	// SetAuth associates an auth token with the client. An empty token
	// returns the client to a logged-out state.
	SetAuth(ctx context.Context, token string) error

	// SetAuthCallback installs a token fetcher, superseding any previous
	// fetcher or static token. A nil fetcher clears the installed one and
	// returns the client to a logged-out state.
	SetAuthCallback(ctx context.Context, fetcher TokenFetcher) error
}

// Subscription is one live reactive query. Updates are pushed in the
// backend's emission order; the channel closing signals that the stream ended
// normally. Close cancels the subscription server-side and is idempotent.
type Subscription interface {
	Updates() <-chan FunctionResult
	Close()
}
