package bridge

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/get-convex/convex-mobile/errors"
)

// taskHost runs every backend-facing operation on its own goroutines so
// foreign callers never block on network I/O beyond the method call they
// chose to await. It lives exactly as long as the owning Bridge.
type taskHost struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTaskHost() *taskHost {
	ctx, cancel := context.WithCancel(context.Background())
	return &taskHost{ctx: ctx, cancel: cancel}
}

// task is a handle to one spawned unit of work.
type task struct {
	done   chan struct{}
	result any
	err    error
}

// spawn runs fn on a host goroutine bound to the host context. A panic inside
// fn is recovered and surfaces as an internal error on the handle.
func (h *taskHost) spawn(name string, fn func(ctx context.Context) (any, error)) *task {
	t := &task{done: make(chan struct{})}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				Logger().Error("task panicked",
					zap.String("task", name),
					zap.Any("panic", r))
				t.result, t.err = nil, errors.FromPanic(r)
			}
		}()
		t.result, t.err = fn(h.ctx)
	}()
	return t
}

// wait blocks until the task completes or ctx is done.
func (t *task) wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, errors.WrapInternal(ctx.Err(), "await task")
	}
}

// close cancels the host context and waits for every spawned task to exit.
func (h *taskHost) close() {
	h.cancel()
	h.wg.Wait()
}
