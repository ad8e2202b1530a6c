// sessions/sessions.go
/* Package sessions provides the authentication session types that supply
access tokens to the client: developer tokens, the persistent refresh-token
flow, server-side JWT app auth, and client credentials. Sessions own token
caching and refresh policy; the tokenmanager package owns the endpoint
interactions. */
package sessions

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/tokenmanager"
)

// Session supplies access tokens for outgoing requests and supports forcing a
// refresh. All implementations are safe for concurrent use.
type Session interface {
	GetAccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (*tokenmanager.TokenInfo, error)
}

// TokenGrants is the slice of the token manager surface sessions depend on.
// *tokenmanager.TokenManager satisfies it; tests substitute fakes.
type TokenGrants interface {
	GetTokensRefreshGrant(ctx context.Context, refreshToken string) (*tokenmanager.TokenInfo, error)
	GetTokensClientCredentialsGrant(ctx context.Context, subjectType, subjectID string) (*tokenmanager.TokenInfo, error)
	GetTokensJWTGrant(ctx context.Context, subjectType, subjectID string) (*tokenmanager.TokenInfo, error)
	ExchangeToken(ctx context.Context, opts tokenmanager.ExchangeOptions) (*tokenmanager.TokenInfo, error)
	RevokeTokens(ctx context.Context, token string) error
}

// DownscopeOptions narrows a session's token via token exchange.
type DownscopeOptions struct {
	Scopes     []string
	Resource   string
	SharedLink string
}

// downscope trades the session's current token for a narrowed one. The cached
// token is untouched; the derived token is the caller's to manage.
func downscope(ctx context.Context, session Session, manager TokenGrants, opts DownscopeOptions) (*tokenmanager.TokenInfo, error) {
	accessToken, err := session.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return manager.ExchangeToken(ctx, tokenmanager.ExchangeOptions{
		SubjectToken: accessToken,
		Scopes:       opts.Scopes,
		Resource:     opts.Resource,
		SharedLink:   opts.SharedLink,
	})
}

// refreshFunc performs one token acquisition for a session.
type refreshFunc func(ctx context.Context) (*tokenmanager.TokenInfo, error)

// refreshCall is one in-flight token acquisition shared by every caller that
// needs its outcome.
type refreshCall struct {
	done chan struct{}
	info *tokenmanager.TokenInfo
	err  error
}

// tokenCache holds a session's current token and collapses concurrent refresh
// needs into a single upstream grant request.
type tokenCache struct {
	mu       sync.Mutex
	info     *tokenmanager.TokenInfo
	inflight *refreshCall
}

// current returns the cached token snapshot.
func (c *tokenCache) current() *tokenmanager.TokenInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// set replaces the cached token.
func (c *tokenCache) set(info *tokenmanager.TokenInfo) {
	c.mu.Lock()
	c.info = info
	c.mu.Unlock()
}

// clear drops the cached token so the next access re-authenticates.
func (c *tokenCache) clear() {
	c.set(nil)
}

// getToken resolves an access token through the lifecycle state machine:
// a fresh token is returned as is; a stale one is returned while a refresh
// runs in the background; an expired or absent one blocks the caller on a
// refresh. At most one refresh is in flight at any time.
func (c *tokenCache) getToken(ctx context.Context, refreshBuffer, expiredBuffer time.Duration, refresh refreshFunc, log logger.Logger) (string, error) {
	c.mu.Lock()

	if c.info.IsAccessTokenValid(refreshBuffer) {
		token := c.info.AccessToken
		c.mu.Unlock()
		return token, nil
	}

	if c.info.IsAccessTokenValid(expiredBuffer) {
		if c.inflight == nil {
			c.startRefreshLocked(refresh, log, true)
		}
		token := c.info.AccessToken
		c.mu.Unlock()
		return token, nil
	}

	call := c.inflight
	if call == nil {
		call = c.startRefreshLocked(refresh, log, false)
	}
	c.mu.Unlock()

	select {
	case <-call.done:
		if call.err != nil {
			return "", call.err
		}
		return call.info.AccessToken, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// forceRefresh obtains a new token unconditionally, joining an in-flight
// refresh if one exists.
func (c *tokenCache) forceRefresh(ctx context.Context, refresh refreshFunc, log logger.Logger) (*tokenmanager.TokenInfo, error) {
	c.mu.Lock()
	call := c.inflight
	if call == nil {
		call = c.startRefreshLocked(refresh, log, false)
	}
	c.mu.Unlock()

	select {
	case <-call.done:
		return call.info, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// startRefreshLocked launches the refresh goroutine. Callers must hold mu.
// The refresh runs on a background context so a single caller's cancellation
// cannot abort work other callers are waiting on.
func (c *tokenCache) startRefreshLocked(refresh refreshFunc, log logger.Logger, background bool) *refreshCall {
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call

	go func() {
		info, err := refresh(context.Background())

		c.mu.Lock()
		if err == nil {
			c.info = info
		}
		c.inflight = nil
		c.mu.Unlock()

		call.info, call.err = info, err
		close(call.done)

		if err != nil && background && log != nil {
			log.Warn("Background token refresh failed, request proceeded on stale token", zap.Error(err))
		}
	}()

	return call
}
