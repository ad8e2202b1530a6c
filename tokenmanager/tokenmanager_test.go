// tokenmanager/tokenmanager_test.go
package tokenmanager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxtools/go-box-client/events"
	"github.com/boxtools/go-box-client/httpclient"
	"github.com/boxtools/go-box-client/logger"
)

func newTestTokenManager(t *testing.T, oauthRootURL string, mutate func(*httpclient.ClientConfig)) *TokenManager {
	t.Helper()

	config := httpclient.ClientConfig{
		ClientID:              "cid",
		ClientSecret:          "csecret",
		OAuthRootURL:          oauthRootURL,
		MaxRetryAttempts:      2,
		RetryInterval:         time.Millisecond,
		CustomTimeout:         5 * time.Second,
		MaxConcurrentRequests: 5,
	}
	if mutate != nil {
		mutate(&config)
	}

	requests, err := httpclient.NewRequestManager(config, events.NewEmitter(), logger.NewNopLogger())
	require.NoError(t, err)

	tm, err := New(config, requests, logger.NewNopLogger())
	require.NoError(t, err)
	return tm
}

func TestGetTokensRefreshGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, GrantTypeRefreshToken, r.PostForm.Get("grant_type"))
		assert.Equal(t, "r0", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		assert.Equal(t, "csecret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	before := time.Now()
	info, err := tm.GetTokensRefreshGrant(context.Background(), "r0")

	require.NoError(t, err)
	assert.Equal(t, "a1", info.AccessToken)
	assert.Equal(t, "r1", info.RefreshToken)
	assert.Equal(t, time.Hour, info.AccessTokenTTL)
	assert.WithinDuration(t, before, info.AcquiredAt, 5*time.Second)
}

func TestGetTokensInvalidGrantIsExpiredAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh token has expired"}`))
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	_, err := tm.GetTokensRefreshGrant(context.Background(), "r0")

	require.ErrorIs(t, err, ErrExpiredAuth)
}

func TestGetTokensServerErrorIsUnexpectedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	_, err := tm.GetTokensRefreshGrant(context.Background(), "r0")

	require.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestGetTokensEmptyBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	_, err := tm.GetTokensRefreshGrant(context.Background(), "r0")

	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGetTokensMissingRefreshTokenIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"a1","expires_in":3600}`))
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	_, err := tm.GetTokensRefreshGrant(context.Background(), "r0")

	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGetTokensClientCredentialsGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, GrantTypeClientCredentials, r.PostForm.Get("grant_type"))
		assert.Equal(t, SubjectTypeEnterprise, r.PostForm.Get("box_subject_type"))
		assert.Equal(t, "98765", r.PostForm.Get("box_subject_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"a1","expires_in":3600}`))
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	info, err := tm.GetTokensClientCredentialsGrant(context.Background(), SubjectTypeEnterprise, "98765")

	require.NoError(t, err)
	assert.Equal(t, "a1", info.AccessToken)
	assert.Empty(t, info.RefreshToken)
}

func TestExchangeToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, GrantTypeTokenExchange, r.PostForm.Get("grant_type"))
		assert.Equal(t, "full-token", r.PostForm.Get("subject_token"))
		assert.Equal(t, TokenTypeAccessToken, r.PostForm.Get("subject_token_type"))
		assert.Equal(t, "item_preview item_download", r.PostForm.Get("scope"))
		assert.Equal(t, "https://api.box.com/2.0/files/1234", r.PostForm.Get("resource"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"downscoped","expires_in":3600}`))
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	info, err := tm.ExchangeToken(context.Background(), ExchangeOptions{
		SubjectToken: "full-token",
		Scopes:       []string{"item_preview", "item_download"},
		Resource:     "https://api.box.com/2.0/files/1234",
	})

	require.NoError(t, err)
	assert.Equal(t, "downscoped", info.AccessToken)
}

func TestExchangeTokenRequiresSubjectToken(t *testing.T) {
	tm := newTestTokenManager(t, "https://api.box.test/oauth2", nil)
	_, err := tm.ExchangeToken(context.Background(), ExchangeOptions{})
	require.Error(t, err)
}

func TestParseTokenResponseIsIdempotent(t *testing.T) {
	body := []byte(`{"access_token":"a1","refresh_token":"r1","expires_in":3600}`)

	first, err := parseTokenResponse(body, GrantTypeRefreshToken)
	require.NoError(t, err)
	second, err := parseTokenResponse(body, GrantTypeRefreshToken)
	require.NoError(t, err)

	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.AccessTokenTTL, second.AccessTokenTTL)
}

func TestRevokeTokens(t *testing.T) {
	var revoked string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/revoke", r.URL.Path)
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		revoked = r.PostForm.Get("token")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tm := newTestTokenManager(t, server.URL, nil)
	err := tm.RevokeTokens(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, "a1", revoked)
}
