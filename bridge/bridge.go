package bridge

import (
	"context"
	"sync"

	"go.uber.org/zap"

	convexmobile "github.com/get-convex/convex-mobile"
	"github.com/get-convex/convex-mobile/backend"
	"github.com/get-convex/convex-mobile/errors"
	"github.com/get-convex/convex-mobile/values"
)

// Bridge drives one connection to a Convex deployment on behalf of a foreign
// caller. All methods are safe for concurrent use; operations issued
// concurrently are independent and unordered relative to each other.
type Bridge struct {
	host          *taskHost
	cell          *connCell
	connector     backend.Connector
	stateSub      convexmobile.StateSubscriber
	deploymentURL string
	clientID      string
	closeOnce     sync.Once
}

// Option configures a Bridge at construction time.
type Option func(*Bridge)

// WithConnector plugs in the backend client implementation. The production
// websocket client module provides one; without it, the first operation
// fails with an internal error.
func WithConnector(c backend.Connector) Option {
	return func(b *Bridge) { b.connector = c }
}

// WithStateSubscriber installs an observer for backend connectivity-state
// transitions. States are delivered in emission order by a single relay task
// and never overlap.
func WithStateSubscriber(s convexmobile.StateSubscriber) Option {
	return func(b *Bridge) { b.stateSub = s }
}

// New creates a Bridge. The backend client is not created or connected until
// the first method call that needs it.
func New(deploymentURL, clientID string, opts ...Option) *Bridge {
	b := &Bridge{
		host:          newTaskHost(),
		deploymentURL: deploymentURL,
		clientID:      clientID,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.cell = newConnCell(b.connectBackend)
	return b
}

// connectBackend performs the one-shot connection establishment: it wires the
// state relay when a subscriber is present and dials through the connector on
// a host task.
func (b *Bridge) connectBackend() (backend.Client, error) {
	if b.connector == nil {
		return nil, errors.Internal("no backend connector configured")
	}

	opts := backend.Options{
		DeploymentURL: b.deploymentURL,
		ClientID:      b.clientID,
	}
	if b.stateSub != nil {
		states := make(chan convexmobile.ConnectionState, 1)
		opts.States = states
		sub := b.stateSub
		b.host.spawn("state-relay", func(ctx context.Context) (any, error) {
			forwardStates(ctx, states, sub)
			return nil, nil
		})
	}

	t := b.host.spawn("connect", func(ctx context.Context) (any, error) {
		return b.connector(ctx, opts)
	})
	v, err := t.wait(b.host.ctx)
	if err != nil {
		return nil, err
	}
	Logger().Debug("backend connected", zap.String("deployment_url", b.deploymentURL))
	return v.(backend.Client), nil
}

// Query executes a one-shot query against the backend.
func (b *Bridge) Query(ctx context.Context, name string, args map[string]string) (string, error) {
	return b.call(ctx, opQuery, name, args)
}

// Mutation runs a mutation against the backend.
func (b *Bridge) Mutation(ctx context.Context, name string, args map[string]string) (string, error) {
	return b.call(ctx, opMutation, name, args)
}

// Action runs an action on the backend.
func (b *Bridge) Action(ctx context.Context, name string, args map[string]string) (string, error) {
	return b.call(ctx, opAction, name, args)
}

type opKind string

const (
	opQuery    opKind = "query"
	opMutation opKind = "mutation"
	opAction   opKind = "action"
)

func (b *Bridge) call(ctx context.Context, op opKind, name string, args map[string]string) (string, error) {
	client, err := b.cell.get(ctx)
	if err != nil {
		return "", err
	}

	encoded, err := values.EncodeArgs(args)
	if err != nil {
		return "", errors.WrapInternal(err, "encode arguments")
	}

	t := b.host.spawn(string(op)+" "+name, func(ctx context.Context) (any, error) {
		switch op {
		case opQuery:
			return client.Query(ctx, name, encoded)
		case opMutation:
			return client.Mutation(ctx, name, encoded)
		default:
			return client.Action(ctx, name, encoded)
		}
	})
	v, err := t.wait(ctx)
	if err != nil {
		return "", asInternal(err, string(op)+" failed")
	}
	return convertResult(v.(backend.FunctionResult))
}

// convertResult is the boundary converter for one-shot operations: every
// FunctionResult becomes either a JSON success payload or exactly one
// taxonomy kind.
func convertResult(result backend.FunctionResult) (string, error) {
	if v, ok := result.Value(); ok {
		out, err := v.JSON()
		if err != nil {
			return "", errors.WrapInternal(err, "encode result")
		}
		return out, nil
	}
	if message, data, ok := result.ConvexError(); ok {
		encoded, err := data.JSON()
		if err != nil {
			return "", errors.WrapInternal(err, "encode error payload")
		}
		return "", errors.Convex(message, encoded)
	}
	message, _ := result.ErrorMessage()
	return "", errors.Server(message)
}

// Close tears down the task host: the state relay and every outstanding
// subscription pump stop, and no further callbacks are delivered. Idempotent.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		b.host.close()
		Logger().Debug("bridge closed", zap.String("deployment_url", b.deploymentURL))
	})
}
