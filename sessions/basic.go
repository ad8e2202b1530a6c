// sessions/basic.go
package sessions

import (
	"context"
	"errors"

	"github.com/boxtools/go-box-client/tokenmanager"
)

// BasicSession wraps a fixed developer token. It cannot refresh; when the
// token expires the session is spent and a new token must be issued manually.
type BasicSession struct {
	accessToken string
	manager     TokenGrants
}

// NewBasicSession creates a session around a developer token. The manager may
// be nil; it is only needed for revocation.
func NewBasicSession(accessToken string, manager TokenGrants) *BasicSession {
	return &BasicSession{accessToken: accessToken, manager: manager}
}

func (s *BasicSession) GetAccessToken(ctx context.Context) (string, error) {
	if s.accessToken == "" {
		return "", errors.New("sessions: developer token is empty")
	}
	return s.accessToken, nil
}

// Refresh always fails: a developer token has no refresh path.
func (s *BasicSession) Refresh(ctx context.Context) (*tokenmanager.TokenInfo, error) {
	return nil, errors.New("sessions: a developer token cannot be refreshed")
}

// RevokeTokens invalidates the developer token server-side.
func (s *BasicSession) RevokeTokens(ctx context.Context) error {
	if s.manager == nil {
		return errors.New("sessions: no token manager configured for revocation")
	}
	return s.manager.RevokeTokens(ctx, s.accessToken)
}
