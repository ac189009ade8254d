package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	convexmobile "github.com/get-convex/convex-mobile"
	"github.com/get-convex/convex-mobile/values"
)

var ErrClosed = errors.New("local backend closed")

// Handler computes the result of one registered function call.
type Handler func(args values.Args) FunctionResult

// LocalBackend is an in-memory Client with a registerable function table and
// push-update publication. It exists for tests and local development; it
// implements the full Client contract, including auth state and connectivity
// emission, without any network.
type LocalBackend struct {
	queries   map[string]Handler
	mutations map[string]Handler
	actions   map[string]Handler
	subs      map[string][]*localSubscription
	states    chan<- convexmobile.ConnectionState
	fetcher   TokenFetcher
	token     string
	mu        sync.RWMutex
	closed    bool
}

// NewLocalBackend creates an empty local backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		queries:   make(map[string]Handler),
		mutations: make(map[string]Handler),
		actions:   make(map[string]Handler),
		subs:      make(map[string][]*localSubscription),
	}
}

// RegisterQuery registers a query handler under name.
func (b *LocalBackend) RegisterQuery(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries[name] = fn
}

// RegisterMutation registers a mutation handler under name.
func (b *LocalBackend) RegisterMutation(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutations[name] = fn
}

// RegisterAction registers an action handler under name.
func (b *LocalBackend) RegisterAction(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions[name] = fn
}

// Connector returns a Connector that "dials" this backend: it wires the
// state channel, emits connecting and connected, and hands back the backend
// as the connected client.
func (b *LocalBackend) Connector() Connector {
	return func(ctx context.Context, opts Options) (Client, error) {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return nil, ErrClosed
		}
		b.states = opts.States
		b.mu.Unlock()

		b.EmitState(convexmobile.StateConnecting)
		b.EmitState(convexmobile.StateConnected)
		Logger().Debug("local backend connected",
			zap.String("deployment_url", opts.DeploymentURL),
			zap.String("client_id", opts.ClientID))
		return b, nil
	}
}

// EmitState sends one connectivity state to the wired state channel. The
// send blocks on a slow consumer; states are never dropped or reordered.
func (b *LocalBackend) EmitState(state convexmobile.ConnectionState) {
	b.mu.RLock()
	states := b.states
	b.mu.RUnlock()
	if states != nil {
		states <- state
	}
}

// Reconnect simulates a connection drop and re-establishment: it emits the
// state transitions and re-invokes an installed token fetcher with
// forceRefresh set, the way the websocket client does.
func (b *LocalBackend) Reconnect(ctx context.Context) error {
	b.EmitState(convexmobile.StateDisconnected)
	b.EmitState(convexmobile.StateConnecting)

	b.mu.RLock()
	fetcher := b.fetcher
	b.mu.RUnlock()
	if fetcher != nil {
		token, err := fetcher(ctx, true)
		if err != nil {
			return err
		}
		b.mu.Lock()
		b.token = token
		b.mu.Unlock()
	}

	b.EmitState(convexmobile.StateConnected)
	return nil
}

func (b *LocalBackend) call(table string, name string, args values.Args) (FunctionResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return FunctionResult{}, ErrClosed
	}

	var fn Handler
	switch table {
	case "query":
		fn = b.queries[name]
	case "mutation":
		fn = b.mutations[name]
	case "action":
		fn = b.actions[name]
	}
	if fn == nil {
		return ErrorMessageResult(fmt.Sprintf("Could not find public function for '%s'", name)), nil
	}
	return fn(args), nil
}

func (b *LocalBackend) Query(ctx context.Context, name string, args values.Args) (FunctionResult, error) {
	return b.call("query", name, args)
}

func (b *LocalBackend) Mutation(ctx context.Context, name string, args values.Args) (FunctionResult, error) {
	return b.call("mutation", name, args)
}

func (b *LocalBackend) Action(ctx context.Context, name string, args values.Args) (FunctionResult, error) {
	return b.call("action", name, args)
}

// Subscribe validates the query name synchronously, delivers the current
// result as the initial update, and registers the subscription for future
// Publish and Push calls.
func (b *LocalBackend) Subscribe(ctx context.Context, name string, args values.Args) (Subscription, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	fn, ok := b.queries[name]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("no query registered for %q", name)
	}

	sub := &localSubscription{
		backend: b,
		name:    name,
		args:    args,
		ch:      make(chan FunctionResult, 16),
	}
	b.subs[name] = append(b.subs[name], sub)
	b.mu.Unlock()

	sub.push(fn(args))
	return sub, nil
}

// Publish recomputes the named query for every live subscription and pushes
// the result, the way a data change re-runs a reactive query.
func (b *LocalBackend) Publish(name string) {
	b.mu.RLock()
	fn := b.queries[name]
	subs := append([]*localSubscription(nil), b.subs[name]...)
	b.mu.RUnlock()

	if fn == nil {
		return
	}
	for _, sub := range subs {
		sub.push(fn(sub.args))
	}
}

// Push delivers an explicit result to every live subscription of name,
// bypassing the handler. Used to inject error results.
func (b *LocalBackend) Push(name string, result FunctionResult) {
	b.mu.RLock()
	subs := append([]*localSubscription(nil), b.subs[name]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.push(result)
	}
}

func (b *LocalBackend) SetAuth(ctx context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.token = token
	return nil
}

func (b *LocalBackend) SetAuthCallback(ctx context.Context, fetcher TokenFetcher) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.fetcher = fetcher
	b.mu.Unlock()

	if fetcher == nil {
		b.mu.Lock()
		b.token = ""
		b.mu.Unlock()
		return nil
	}

	token, err := fetcher(ctx, true)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
	return nil
}

// AuthToken returns the current auth token, empty when logged out.
func (b *LocalBackend) AuthToken() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

// Close ends every live subscription and rejects further calls.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var all []*localSubscription
	for _, subs := range b.subs {
		all = append(all, subs...)
	}
	b.subs = make(map[string][]*localSubscription)
	b.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
	return nil
}

func (b *LocalBackend) dropSubscription(target *localSubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[target.name]
	for i, sub := range subs {
		if sub == target {
			b.subs[target.name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

type localSubscription struct {
	backend *LocalBackend
	name    string
	args    values.Args
	ch      chan FunctionResult
	mu      sync.Mutex
	closed  bool
}

func (s *localSubscription) Updates() <-chan FunctionResult { return s.ch }

func (s *localSubscription) Close() {
	s.mu.Lock()
	wasClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	if wasClosed {
		return
	}
	s.backend.dropSubscription(s)
	close(s.ch)
}

// push delivers one update without blocking. A consumer that has stalled past
// the buffer loses the update; the real client coalesces reactive results the
// same way.
func (s *localSubscription) push(result FunctionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- result:
	default:
		Logger().Warn("dropping update for stalled subscription", zap.String("query", s.name))
	}
}
