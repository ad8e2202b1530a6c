// tokenmanager/tokeninfo_test.go
package tokenmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	previous := NowTimeFunc
	NowTimeFunc = func() time.Time { return at }
	t.Cleanup(func() { NowTimeFunc = previous })
}

func TestTokenInfoValidity(t *testing.T) {
	acquired := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	info := &TokenInfo{
		AccessToken:    "a1",
		AccessTokenTTL: time.Hour,
		AcquiredAt:     acquired,
	}

	tests := []struct {
		name   string
		now    time.Time
		buffer time.Duration
		want   bool
	}{
		{"fresh token", acquired.Add(time.Second), 0, true},
		{"just inside lifetime", acquired.Add(time.Hour - time.Millisecond), 0, true},
		{"at expiry", acquired.Add(time.Hour), 0, false},
		{"past expiry", acquired.Add(2 * time.Hour), 0, false},
		{"inside buffer window", acquired.Add(59 * time.Minute), 2 * time.Minute, false},
		{"outside buffer window", acquired.Add(50 * time.Minute), 2 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixClock(t, tt.now)
			assert.Equal(t, tt.want, info.IsAccessTokenValid(tt.buffer))
		})
	}
}

func TestTokenInfoNilAndEmptyNeverValid(t *testing.T) {
	var nilInfo *TokenInfo
	assert.False(t, nilInfo.IsAccessTokenValid(0))

	empty := &TokenInfo{AccessTokenTTL: time.Hour, AcquiredAt: NowTimeFunc()}
	assert.False(t, empty.IsAccessTokenValid(0))
}

func TestTokenInfoExpiresAt(t *testing.T) {
	acquired := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	info := &TokenInfo{AccessTokenTTL: 45 * time.Minute, AcquiredAt: acquired}
	assert.Equal(t, acquired.Add(45*time.Minute), info.ExpiresAt())
}

func TestTokenInfoOAuth2Token(t *testing.T) {
	acquired := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	info := &TokenInfo{
		AccessToken:    "a1",
		RefreshToken:   "r1",
		AccessTokenTTL: time.Hour,
		AcquiredAt:     acquired,
	}

	token := info.OAuth2Token()
	require.NotNil(t, token)
	assert.Equal(t, "a1", token.AccessToken)
	assert.Equal(t, "r1", token.RefreshToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, acquired.Add(time.Hour), token.Expiry)
}
