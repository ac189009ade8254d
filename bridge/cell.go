package bridge

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/get-convex/convex-mobile/backend"
	"github.com/get-convex/convex-mobile/errors"
)

// connCell is the single-flight, lazily-initialized holder of the one
// connected client shared by all operations on a Bridge. Racing callers share
// the same in-flight connect attempt. Success is cached for the Bridge's
// lifetime; failure is not, so a later call retries after a transient outage.
type connCell struct {
	// connect runs the dial on the host so one waiter's timeout cannot
	// abort the shared attempt.
	connect func() (backend.Client, error)
	group   singleflight.Group
	mu      sync.RWMutex
	client  backend.Client
}

func newConnCell(connect func() (backend.Client, error)) *connCell {
	return &connCell{connect: connect}
}

// get returns the connected client, establishing it on first use. ctx bounds
// only this caller's wait; the shared attempt itself runs on the host and is
// not aborted when one waiter gives up.
func (c *connCell) get(ctx context.Context) (backend.Client, error) {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	ch := c.group.DoChan("connect", func() (any, error) {
		client, err := c.connect()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.client = client
		c.mu.Unlock()
		return client, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, asInternal(res.Err, "connect to backend")
		}
		return res.Val.(backend.Client), nil
	case <-ctx.Done():
		return nil, errors.WrapInternal(ctx.Err(), "await connection")
	}
}

// asInternal normalizes err into the taxonomy, passing through errors that
// already carry a kind.
func asInternal(err error, detail string) error {
	if errors.KindOf(err) != "" {
		return err
	}
	return errors.WrapInternal(err, detail)
}
