// sessions/appauth.go
package sessions

import (
	"context"
	"errors"

	"github.com/boxtools/go-box-client/httpclient"
	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/tokenmanager"
)

// AppAuthSession authenticates as a server-side application via the
// JWT-bearer grant. It can always mint a new token from the configured key
// material, so an expired token is recovered from transparently.
type AppAuthSession struct {
	manager     TokenGrants
	config      httpclient.ClientConfig
	log         logger.Logger
	subjectType string
	subjectID   string
	cache       tokenCache
}

// NewAppAuthSession creates a JWT session for the given subject. subjectType
// is tokenmanager.SubjectTypeEnterprise or tokenmanager.SubjectTypeUser.
func NewAppAuthSession(manager TokenGrants, config httpclient.ClientConfig, log logger.Logger, subjectType, subjectID string) (*AppAuthSession, error) {
	if manager == nil {
		return nil, errors.New("sessions: a token manager is required")
	}
	if config.AppAuth == nil {
		return nil, errors.New("sessions: app auth session requires app auth configuration")
	}
	if subjectType != tokenmanager.SubjectTypeEnterprise && subjectType != tokenmanager.SubjectTypeUser {
		return nil, errors.New("sessions: subject type must be enterprise or user")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &AppAuthSession{
		manager:     manager,
		config:      config,
		log:         log,
		subjectType: subjectType,
		subjectID:   subjectID,
	}, nil
}

func (s *AppAuthSession) GetAccessToken(ctx context.Context) (string, error) {
	return s.cache.getToken(ctx, s.config.TokenRefreshBufferPeriod, s.config.ExpiredBufferPeriod, s.refresh, s.log)
}

// Refresh mints a fresh token regardless of the current token's validity.
func (s *AppAuthSession) Refresh(ctx context.Context) (*tokenmanager.TokenInfo, error) {
	return s.cache.forceRefresh(ctx, s.refresh, s.log)
}

// CurrentTokenInfo returns the cached token snapshot, which may be nil.
func (s *AppAuthSession) CurrentTokenInfo() *tokenmanager.TokenInfo {
	return s.cache.current()
}

// HandleExpiredTokensError drops the cached token; the next access mints a
// replacement from the key material.
func (s *AppAuthSession) HandleExpiredTokensError(cause error) error {
	s.cache.clear()
	return nil
}

// DownscopeToken derives a token restricted to the given scopes and resource.
// The session's own token is unaffected.
func (s *AppAuthSession) DownscopeToken(ctx context.Context, opts DownscopeOptions) (*tokenmanager.TokenInfo, error) {
	return downscope(ctx, s, s.manager, opts)
}

// RevokeTokens invalidates the current token server-side.
func (s *AppAuthSession) RevokeTokens(ctx context.Context) error {
	info := s.cache.current()
	if info == nil || info.AccessToken == "" {
		return nil
	}
	if err := s.manager.RevokeTokens(ctx, info.AccessToken); err != nil {
		return err
	}
	s.cache.clear()
	return nil
}

func (s *AppAuthSession) refresh(ctx context.Context) (*tokenmanager.TokenInfo, error) {
	return s.manager.GetTokensJWTGrant(ctx, s.subjectType, s.subjectID)
}
