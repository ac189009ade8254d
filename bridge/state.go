package bridge

import (
	"context"

	"go.uber.org/zap"

	convexmobile "github.com/get-convex/convex-mobile"
)

// forwardStates is the single relay task delivering connectivity-state
// transitions to the foreign observer. One consumer on a capacity-1 channel
// gives strict emission order with no overlapping invocations; a slow
// observer stalls the producer instead of losing states.
func forwardStates(ctx context.Context, states <-chan convexmobile.ConnectionState, sub convexmobile.StateSubscriber) {
	for {
		select {
		case state, ok := <-states:
			if !ok {
				return
			}
			Logger().Debug("connection state changed", zap.Stringer("state", state))
			sub.OnStateChange(state)
		case <-ctx.Done():
			return
		}
	}
}
