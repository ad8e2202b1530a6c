// tokenmanager/tokeninfo.go
package tokenmanager

import (
	"time"

	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. Tests swap it out to pin token
// validity arithmetic to a fixed clock.
var NowTimeFunc = time.Now

// TokenInfo is the client-side snapshot of an issued access token. Lifetime
// is carried as a TTL anchored at acquisition time rather than an absolute
// expiry, so validity checks stay correct across machines with skewed clocks.
type TokenInfo struct {
	AccessToken    string
	RefreshToken   string
	AccessTokenTTL time.Duration
	AcquiredAt     time.Time
	TokenType      string
}

// ExpiresAt returns the locally computed expiry instant.
func (t *TokenInfo) ExpiresAt() time.Time {
	return t.AcquiredAt.Add(t.AccessTokenTTL)
}

// IsAccessTokenValid reports whether the token is usable with at least buffer
// of its lifetime remaining. A nil or empty token is never valid.
func (t *TokenInfo) IsAccessTokenValid(buffer time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return NowTimeFunc().Before(t.ExpiresAt().Add(-buffer))
}

// OAuth2Token converts the snapshot into the standard oauth2 token shape for
// interoperability with libraries that consume oauth2.TokenSource.
func (t *TokenInfo) OAuth2Token() *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    tokenType,
		Expiry:       t.ExpiresAt(),
	}
}
