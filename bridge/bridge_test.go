package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/get-convex/convex-mobile/backend"
	cverrors "github.com/get-convex/convex-mobile/errors"
	"github.com/get-convex/convex-mobile/values"
)

// fakeClient scripts backend behavior per test. Zero-value methods answer
// with a null value result.
type fakeClient struct {
	queryFn           func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error)
	mutationFn        func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error)
	actionFn          func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error)
	subscribeFn       func(ctx context.Context, name string, args values.Args) (backend.Subscription, error)
	setAuthFn         func(ctx context.Context, token string) error
	setAuthCallbackFn func(ctx context.Context, fetcher backend.TokenFetcher) error
}

func (c *fakeClient) Query(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
	if c.queryFn != nil {
		return c.queryFn(ctx, name, args)
	}
	return backend.ValueResult(values.Null()), nil
}

func (c *fakeClient) Mutation(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
	if c.mutationFn != nil {
		return c.mutationFn(ctx, name, args)
	}
	return backend.ValueResult(values.Null()), nil
}

func (c *fakeClient) Action(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
	if c.actionFn != nil {
		return c.actionFn(ctx, name, args)
	}
	return backend.ValueResult(values.Null()), nil
}

func (c *fakeClient) Subscribe(ctx context.Context, name string, args values.Args) (backend.Subscription, error) {
	if c.subscribeFn != nil {
		return c.subscribeFn(ctx, name, args)
	}
	return newFakeSubscription(16), nil
}

func (c *fakeClient) SetAuth(ctx context.Context, token string) error {
	if c.setAuthFn != nil {
		return c.setAuthFn(ctx, token)
	}
	return nil
}

func (c *fakeClient) SetAuthCallback(ctx context.Context, fetcher backend.TokenFetcher) error {
	if c.setAuthCallbackFn != nil {
		return c.setAuthCallbackFn(ctx, fetcher)
	}
	return nil
}

type fakeSubscription struct {
	ch   chan backend.FunctionResult
	once sync.Once
}

func newFakeSubscription(buffer int) *fakeSubscription {
	return &fakeSubscription{ch: make(chan backend.FunctionResult, buffer)}
}

func (s *fakeSubscription) Updates() <-chan backend.FunctionResult { return s.ch }
func (s *fakeSubscription) Close()                                 { s.once.Do(func() { close(s.ch) }) }
func (s *fakeSubscription) push(r backend.FunctionResult)          { s.ch <- r }

func connectorFor(client backend.Client) backend.Connector {
	return func(ctx context.Context, opts backend.Options) (backend.Client, error) {
		return client, nil
	}
}

// recordingSubscriber captures callbacks. deliveryGate, when non-nil, is
// received from inside OnUpdate to let tests hold the pump mid-delivery.
type recordingSubscriber struct {
	mu           sync.Mutex
	updates      []string
	errs         []subscriberError
	deliveryGate chan struct{}
	delivered    chan struct{}
}

type subscriberError struct {
	message string
	data    string
}

func newRecordingSubscriber() *recordingSubscriber {
	return &recordingSubscriber{delivered: make(chan struct{}, 64)}
}

func (s *recordingSubscriber) OnUpdate(value string) {
	if s.deliveryGate != nil {
		<-s.deliveryGate
	}
	s.mu.Lock()
	s.updates = append(s.updates, value)
	s.mu.Unlock()
	s.delivered <- struct{}{}
}

func (s *recordingSubscriber) OnError(message string, errorData string) {
	s.mu.Lock()
	s.errs = append(s.errs, subscriberError{message: message, data: errorData})
	s.mu.Unlock()
	s.delivered <- struct{}{}
}

func (s *recordingSubscriber) snapshot() ([]string, []subscriberError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.updates...), append([]subscriberError(nil), s.errs...)
}

func (s *recordingSubscriber) waitDelivery(t *testing.T) {
	t.Helper()
	select {
	case <-s.delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscriber callback")
	}
}

func TestBridge_SingleFlightConnect(t *testing.T) {
	ctx := context.Background()
	var attempts atomic.Int32
	client := &fakeClient{}
	connector := func(ctx context.Context, opts backend.Options) (backend.Client, error) {
		attempts.Add(1)
		time.Sleep(50 * time.Millisecond) // hold the attempt open so callers race
		return client, nil
	}

	b := New("local://test", "test-1.0", WithConnector(connector))
	defer b.Close()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Query(ctx, "any:fn", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent query %d failed: %v", i, err)
		}
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("connect attempts = %d, want 1", got)
	}
}

func TestBridge_ConnectFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	var attempts atomic.Int32
	connector := func(ctx context.Context, opts backend.Options) (backend.Client, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("network unreachable")
		}
		return &fakeClient{}, nil
	}

	b := New("local://test", "test-1.0", WithConnector(connector))
	defer b.Close()

	if _, err := b.Query(ctx, "any:fn", nil); cverrors.KindOf(err) != cverrors.KindInternal {
		t.Fatalf("first query err = %v, want internal error", err)
	}
	if _, err := b.Query(ctx, "any:fn", nil); err != nil {
		t.Fatalf("retry after connect failure: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("connect attempts = %d, want 2", got)
	}
}

func TestBridge_NoConnector(t *testing.T) {
	b := New("local://test", "test-1.0")
	defer b.Close()

	_, err := b.Query(context.Background(), "any:fn", nil)
	if cverrors.KindOf(err) != cverrors.KindInternal {
		t.Errorf("err = %v, want internal error", err)
	}
}

func TestBridge_ResultConversion(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		result   backend.FunctionResult
		want     string
		wantKind cverrors.Kind
		wantData string
	}{
		{
			name:   "value",
			result: backend.ValueResult(values.Object(map[string]values.Value{"n": values.Float64(7)})),
			want:   `{"n":7}`,
		},
		{
			name: "convex error carries payload",
			result: backend.ConvexErrorResult("insufficient funds", values.Object(map[string]values.Value{
				"balance": values.Float64(12),
			})),
			wantKind: cverrors.KindConvex,
			wantData: `{"balance":12}`,
		},
		{
			name:     "error message becomes server error",
			result:   backend.ErrorMessageResult("function crashed"),
			wantKind: cverrors.KindServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{
				queryFn: func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
					return tt.result, nil
				},
			}
			b := New("local://test", "test-1.0", WithConnector(connectorFor(client)))
			defer b.Close()

			got, err := b.Query(ctx, "fn", nil)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("query: %v", err)
				}
				if got != tt.want {
					t.Errorf("result = %s, want %s", got, tt.want)
				}
				return
			}
			if cverrors.KindOf(err) != tt.wantKind {
				t.Fatalf("err = %v, want kind %s", err, tt.wantKind)
			}
			if tt.wantData != "" {
				data, ok := cverrors.ConvexData(err)
				if !ok || data != tt.wantData {
					t.Errorf("data = %q, %v; want %q", data, ok, tt.wantData)
				}
			}
		})
	}
}

func TestBridge_MalformedArgs(t *testing.T) {
	b := New("local://test", "test-1.0", WithConnector(connectorFor(&fakeClient{})))
	defer b.Close()

	_, err := b.Query(context.Background(), "fn", map[string]string{"a": `{broken`})
	if cverrors.KindOf(err) != cverrors.KindInternal {
		t.Errorf("err = %v, want internal error", err)
	}
}

func TestBridge_OperationDispatch(t *testing.T) {
	ctx := context.Background()
	var calls []string
	record := func(op string) func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
		return func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
			calls = append(calls, op+":"+name)
			return backend.ValueResult(values.String("ok")), nil
		}
	}
	client := &fakeClient{
		queryFn:    record("query"),
		mutationFn: record("mutation"),
		actionFn:   record("action"),
	}
	b := New("local://test", "test-1.0", WithConnector(connectorFor(client)))
	defer b.Close()

	if _, err := b.Query(ctx, "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Mutation(ctx, "b", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Action(ctx, "c", nil); err != nil {
		t.Fatal(err)
	}

	want := []string{"query:a", "mutation:b", "action:c"}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestBridge_ArgsReachBackendTyped(t *testing.T) {
	ctx := context.Background()
	var seen values.Args
	client := &fakeClient{
		queryFn: func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
			seen = args
			return backend.ValueResult(values.Null()), nil
		},
	}
	b := New("local://test", "test-1.0", WithConnector(connectorFor(client)))
	defer b.Close()

	if _, err := b.Query(ctx, "fn", map[string]string{"flag": `false`, "count": `3`}); err != nil {
		t.Fatal(err)
	}

	flag, ok := seen.Get("flag")
	if !ok {
		t.Fatal("missing flag argument")
	}
	if v, _ := flag.AsBool(); v {
		t.Errorf("flag = %v, want false", v)
	}
	if names := seen.Fields(); names[0].Name != "count" || names[1].Name != "flag" {
		t.Errorf("argument order = %v, want sorted", names)
	}
}

func TestBridge_QueryTaskPanic(t *testing.T) {
	client := &fakeClient{
		queryFn: func(ctx context.Context, name string, args values.Args) (backend.FunctionResult, error) {
			panic("wire codec bug")
		},
	}
	b := New("local://test", "test-1.0", WithConnector(connectorFor(client)))
	defer b.Close()

	_, err := b.Query(context.Background(), "fn", nil)
	if cverrors.KindOf(err) != cverrors.KindInternal {
		t.Errorf("err = %v, want internal error from panic", err)
	}
}

func TestBridge_CallerTimeoutDoesNotAbortSharedConnect(t *testing.T) {
	client := &fakeClient{}
	release := make(chan struct{})
	var attempts atomic.Int32
	connector := func(ctx context.Context, opts backend.Options) (backend.Client, error) {
		attempts.Add(1)
		<-release
		return client, nil
	}

	b := New("local://test", "test-1.0", WithConnector(connector))
	defer b.Close()

	timedOut, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := b.Query(timedOut, "fn", nil); cverrors.KindOf(err) != cverrors.KindInternal {
		t.Fatalf("err = %v, want internal error from timeout", err)
	}

	close(release)
	if _, err := b.Query(context.Background(), "fn", nil); err != nil {
		t.Fatalf("query after released connect: %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("connect attempts = %d, want the shared attempt to survive the timeout", got)
	}
}

func TestBridge_CloseIdempotent(t *testing.T) {
	b := New("local://test", "test-1.0", WithConnector(connectorFor(&fakeClient{})))
	b.Close()
	b.Close()
}
