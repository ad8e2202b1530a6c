// sessions/ccg.go
package sessions

import (
	"context"
	"errors"

	"github.com/boxtools/go-box-client/httpclient"
	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/tokenmanager"
)

// CCGSession authenticates via the client-credentials grant. Like app auth it
// can always mint a new token, so expiry is recovered from transparently.
type CCGSession struct {
	manager     TokenGrants
	config      httpclient.ClientConfig
	log         logger.Logger
	subjectType string
	subjectID   string
	cache       tokenCache
}

// NewCCGSession creates a client-credentials session for the given subject.
func NewCCGSession(manager TokenGrants, config httpclient.ClientConfig, log logger.Logger, subjectType, subjectID string) (*CCGSession, error) {
	if manager == nil {
		return nil, errors.New("sessions: a token manager is required")
	}
	if subjectType != tokenmanager.SubjectTypeEnterprise && subjectType != tokenmanager.SubjectTypeUser {
		return nil, errors.New("sessions: subject type must be enterprise or user")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CCGSession{
		manager:     manager,
		config:      config,
		log:         log,
		subjectType: subjectType,
		subjectID:   subjectID,
	}, nil
}

func (s *CCGSession) GetAccessToken(ctx context.Context) (string, error) {
	return s.cache.getToken(ctx, s.config.TokenRefreshBufferPeriod, s.config.ExpiredBufferPeriod, s.refresh, s.log)
}

// Refresh mints a fresh token regardless of the current token's validity.
func (s *CCGSession) Refresh(ctx context.Context) (*tokenmanager.TokenInfo, error) {
	return s.cache.forceRefresh(ctx, s.refresh, s.log)
}

// CurrentTokenInfo returns the cached token snapshot, which may be nil.
func (s *CCGSession) CurrentTokenInfo() *tokenmanager.TokenInfo {
	return s.cache.current()
}

// HandleExpiredTokensError drops the cached token; the next access mints a
// replacement from the application credentials.
func (s *CCGSession) HandleExpiredTokensError(cause error) error {
	s.cache.clear()
	return nil
}

// DownscopeToken derives a token restricted to the given scopes and resource.
// The session's own token is unaffected.
func (s *CCGSession) DownscopeToken(ctx context.Context, opts DownscopeOptions) (*tokenmanager.TokenInfo, error) {
	return downscope(ctx, s, s.manager, opts)
}

// RevokeTokens invalidates the current token server-side.
func (s *CCGSession) RevokeTokens(ctx context.Context) error {
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

func (s *CCGSession) refresh(ctx context.Context) (*tokenmanager.TokenInfo, error) {
	return s.manager.GetTokensClientCredentialsGrant(ctx, s.subjectType, s.subjectID)
}
