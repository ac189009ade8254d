package bridge

import (
	"context"

	convexmobile "github.com/get-convex/convex-mobile"
	"github.com/get-convex/convex-mobile/backend"
	"github.com/get-convex/convex-mobile/errors"
)

// SetAuth associates an auth token (an OpenID Connect ID token) with this
// client and shares it with the backend. An empty token disassociates a
// previous one, returning the client to a logged-out state.
//
// Installing a token supersedes the effect of a previously installed
// AuthTokenProvider going forward, and vice versa.
func (b *Bridge) SetAuth(ctx context.Context, token string) error {
	client, err := b.cell.get(ctx)
	if err != nil {
		return err
	}

	t := b.host.spawn("set-auth", func(ctx context.Context) (any, error) {
		return nil, client.SetAuth(ctx, token)
	})
	if _, err := t.wait(ctx); err != nil {
		return asInternal(err, "set auth")
	}
	return nil
}

// SetAuthCallback installs a token provider the backend invokes on first
// connect and on every reconnect. A nil provider clears any previously
// installed one and returns the client to a logged-out state.
func (b *Bridge) SetAuthCallback(ctx context.Context, provider convexmobile.AuthTokenProvider) error {
	client, err := b.cell.get(ctx)
	if err != nil {
		return err
	}

	var fetcher backend.TokenFetcher
	if provider != nil {
		fetcher = adaptProvider(provider)
	}

	t := b.host.spawn("set-auth-callback", func(ctx context.Context) (any, error) {
		return nil, client.SetAuthCallback(ctx, fetcher)
	})
	if _, err := t.wait(ctx); err != nil {
		return asInternal(err, "set auth callback")
	}
	return nil
}

// adaptProvider wraps the foreign capability so the backend never sees the
// foreign type. A provider failure propagates as an internal error.
func adaptProvider(provider convexmobile.AuthTokenProvider) backend.TokenFetcher {
	return func(ctx context.Context, forceRefresh bool) (string, error) {
		token, err := provider.FetchToken(forceRefresh)
		if err != nil {
			return "", errors.WrapInternal(err, "fetch auth token")
		}
		return token, nil
	}
}
