// sessions/persistent.go
package sessions

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/boxtools/go-box-client/httpclient"
	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/tokenmanager"
)

// PersistentSession holds a refresh-token pair obtained through the
// authorization-code flow and keeps it alive across access-token expiries.
// With a TokenStore attached, the pair also survives process restarts and can
// be shared with other instances; the store is treated as the source of truth
// when the in-memory refresh token turns out to be consumed.
type PersistentSession struct {
	manager TokenGrants
	config  httpclient.ClientConfig
	log     logger.Logger
	store   TokenStore
	cache   tokenCache
}

// NewPersistentSession creates a session seeded with initial tokens. initial
// may be nil when a store is attached; the pair is then loaded from the store
// on first use.
func NewPersistentSession(manager TokenGrants, config httpclient.ClientConfig, log logger.Logger, initial *tokenmanager.TokenInfo, store TokenStore) (*PersistentSession, error) {
	if manager == nil {
		return nil, errors.New("sessions: a token manager is required")
	}
	if initial == nil && store == nil {
		return nil, errors.New("sessions: persistent session requires initial tokens or a token store")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	session := &PersistentSession{
		manager: manager,
		config:  config,
		log:     log,
		store:   store,
	}
	session.cache.set(initial)
	return session, nil
}

func (s *PersistentSession) GetAccessToken(ctx context.Context) (string, error) {
	return s.cache.getToken(ctx, s.config.TokenRefreshBufferPeriod, s.config.ExpiredBufferPeriod, s.refresh, s.log)
}

// Refresh forces a token rotation regardless of the current token's validity.
func (s *PersistentSession) Refresh(ctx context.Context) (*tokenmanager.TokenInfo, error) {
	return s.cache.forceRefresh(ctx, s.refresh, s.log)
}

// CurrentTokenInfo returns the cached token snapshot, which may be nil.
func (s *PersistentSession) CurrentTokenInfo() *tokenmanager.TokenInfo {
	return s.cache.current()
}

// DownscopeToken derives a token restricted to the given scopes and resource.
// The session's own token pair is unaffected.
func (s *PersistentSession) DownscopeToken(ctx context.Context, opts DownscopeOptions) (*tokenmanager.TokenInfo, error) {
	return downscope(ctx, s, s.manager, opts)
}

// RevokeTokens invalidates the pair server-side and drops all local state.
func (s *PersistentSession) RevokeTokens(ctx context.Context) error {
	info := s.cache.current()
	if info == nil || info.AccessToken == "" {
		return nil
	}
	if err := s.manager.RevokeTokens(ctx, info.AccessToken); err != nil {
		return err
	}
	s.cache.clear()
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			return &TokenStoreError{Op: "clear", Err: err}
		}
	}
	return nil
}

// HandleExpiredTokensError clears local and persisted token state after the
// API rejected the session's credentials, so the next access either reloads a
// pair another instance rotated in or fails cleanly.
func (s *PersistentSession) HandleExpiredTokensError(cause error) error {
	s.cache.clear()
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			return &TokenStoreError{Op: "clear", Err: err}
		}
	}
	s.log.Warn("Session tokens rejected by the API, cleared local token state", zap.Error(cause))
	return nil
}

// refresh rotates the pair. When the grant is rejected and a store is
// attached, the store is re-read before giving up: another instance may have
// consumed our refresh token and persisted its replacement.
func (s *PersistentSession) refresh(ctx context.Context) (*tokenmanager.TokenInfo, error) {
	refreshToken := ""
	if info := s.cache.current(); info != nil {
		refreshToken = info.RefreshToken
	}

	if refreshToken == "" && s.store != nil {
		stored, err := s.store.Read()
		if err != nil {
			return nil, &TokenStoreError{Op: "read", Err: err}
		}
		if stored != nil {
			if stored.IsAccessTokenValid(s.config.TokenRefreshBufferPeriod) {
				return stored, nil
			}
			refreshToken = stored.RefreshToken
		}
	}
	if refreshToken == "" {
		return nil, errors.New("sessions: no refresh token available")
	}

	info, err := s.manager.GetTokensRefreshGrant(ctx, refreshToken)
	if err != nil && s.store != nil {
		stored, readErr := s.store.Read()
		if readErr == nil && stored != nil && stored.RefreshToken != "" && stored.RefreshToken != refreshToken {
			s.log.Debug("Refresh token was rotated elsewhere, retrying with stored pair")
			info, err = s.manager.GetTokensRefreshGrant(ctx, stored.RefreshToken)
		}
	}
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if writeErr := s.store.Write(info); writeErr != nil {
			return nil, &TokenStoreError{Op: "write", Err: writeErr}
		}
	}
	return info, nil
}
