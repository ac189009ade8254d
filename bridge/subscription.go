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

// SubscriptionHandle owns a subscription's one-shot cancellation signal.
// At most one cancellation is ever sent; Cancel after Cancel is a no-op.
type SubscriptionHandle struct {
	sub       backend.Subscription
	cancelled chan struct{}
	once      sync.Once
}

// Cancel stops the subscription. Future deliveries cease; an update that
// resolved concurrently with the cancellation is still delivered. Idempotent.
func (h *SubscriptionHandle) Cancel() {
	h.once.Do(func() {
		close(h.cancelled)
		h.sub.Close()
	})
}

// Subscribe establishes a reactive query subscription and pumps its updates
// to sub from a background task until the returned handle is cancelled, the
// stream ends, or the bridge closes.
//
// The subscribe request itself is synchronous, so immediate failures such as
// an unknown function name surface here as an internal error. Failures after
// the handshake reach the subscriber through OnError.
func (b *Bridge) Subscribe(ctx context.Context, name string, args map[string]string, sub convexmobile.QuerySubscriber) (*SubscriptionHandle, error) {
	client, err := b.cell.get(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := values.EncodeArgs(args)
	if err != nil {
		return nil, errors.WrapInternal(err, "encode arguments")
	}

	t := b.host.spawn("subscribe "+name, func(ctx context.Context) (any, error) {
		return client.Subscribe(ctx, name, encoded)
	})
	v, err := t.wait(ctx)
	if err != nil {
		return nil, asInternal(err, "subscribe failed")
	}
	subscription := v.(backend.Subscription)

	handle := &SubscriptionHandle{
		sub:       subscription,
		cancelled: make(chan struct{}),
	}
	b.host.spawn("pump "+name, func(ctx context.Context) (any, error) {
		b.pump(ctx, name, subscription, sub, handle.cancelled)
		return nil, nil
	})
	Logger().Debug("subscription established", zap.String("query", name))
	return handle, nil
}

// pump is the per-subscription delivery loop. Each iteration prefers a ready
// stream item over a pending cancellation: cancellation stops future
// deliveries but never discards an update that already resolved. The stream
// ending is a normal terminal state with no further callbacks.
func (b *Bridge) pump(ctx context.Context, name string, subscription backend.Subscription, sub convexmobile.QuerySubscriber, cancelled <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("subscription pump panicked",
				zap.String("query", name),
				zap.Any("panic", r))
			// The subscriber must still see a terminal notification.
			notifyPanic(sub, r)
		}
	}()

	updates := subscription.Updates()
	for {
		select {
		case result, ok := <-updates:
			if !ok {
				Logger().Debug("subscription stream ended", zap.String("query", name))
				return
			}
			deliver(sub, result)
			continue
		default:
		}

		select {
		case result, ok := <-updates:
			if !ok {
				Logger().Debug("subscription stream ended", zap.String("query", name))
				return
			}
			deliver(sub, result)
		case <-cancelled:
			drainResolved(updates, sub)
			Logger().Debug("subscription cancelled", zap.String("query", name))
			return
		case <-ctx.Done():
			subscription.Close()
			return
		}
	}
}

// drainResolved delivers updates that resolved concurrently with the
// cancellation signal, then stops.
func drainResolved(updates <-chan backend.FunctionResult, sub convexmobile.QuerySubscriber) {
	for {
		select {
		case result, ok := <-updates:
			if !ok {
				return
			}
			deliver(sub, result)
		default:
			return
		}
	}
}

// deliver classifies one stream item into the subscriber callbacks.
func deliver(sub convexmobile.QuerySubscriber, result backend.FunctionResult) {
	if v, ok := result.Value(); ok {
		encoded, err := v.JSON()
		if err != nil {
			Logger().Error("encode update failed", zap.Error(err))
			sub.OnError("encode update: "+err.Error(), "")
			return
		}
		sub.OnUpdate(encoded)
		return
	}
	if message, data, ok := result.ConvexError(); ok {
		encoded, err := data.JSON()
		if err != nil {
			Logger().Error("encode error payload failed", zap.Error(err))
			sub.OnError(message, "")
			return
		}
		sub.OnError(message, encoded)
		return
	}
	message, _ := result.ErrorMessage()
	sub.OnError(message, "")
}

// notifyPanic delivers the terminal error for a pump that died. The
// subscriber may itself be the panic source, so the callback is guarded.
func notifyPanic(sub convexmobile.QuerySubscriber, recovered any) {
	defer func() { _ = recover() }()
	sub.OnError(errors.FromPanic(recovered).Message, "")
}
