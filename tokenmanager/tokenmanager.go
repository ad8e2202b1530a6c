// tokenmanager/tokenmanager.go
/* Package tokenmanager implements the OAuth2 token endpoint interactions:
obtaining tokens under every supported grant, downscoping via token exchange,
and revocation. It is stateless; sessions own caching and refresh policy. */
package tokenmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/boxtools/go-box-client/httpclient"
	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/response"
)

var (
	// ErrExpiredAuth means the credentials presented to the token endpoint are
	// expired or revoked. Recovery requires re-authorization, not retrying.
	ErrExpiredAuth = errors.New("authentication credentials are expired or revoked")

	// ErrUnexpectedResponse means the token endpoint answered in a way the
	// client cannot interpret as a grant outcome.
	ErrUnexpectedResponse = errors.New("unexpected response from token endpoint")

	// ErrMalformedResponse means the endpoint returned success but the payload
	// is missing fields the grant requires.
	ErrMalformedResponse = errors.New("malformed token response")
)

// TokenManager performs token endpoint operations. It holds no token state
// and is safe for concurrent use.
type TokenManager struct {
	config   httpclient.ClientConfig
	requests *httpclient.RequestManager
	log      logger.Logger
}

// New creates a TokenManager backed by the given request manager.
func New(config httpclient.ClientConfig, requests *httpclient.RequestManager, log logger.Logger) (*TokenManager, error) {
	if requests == nil {
		return nil, errors.New("tokenmanager: a request manager is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &TokenManager{config: config, requests: requests, log: log}, nil
}

func (tm *TokenManager) tokenURL() string {
	return tm.config.OAuthRootURL + "/token"
}

func (tm *TokenManager) revokeURL() string {
	return tm.config.OAuthRootURL + "/revoke"
}

// GetTokensAuthorizationCodeGrant exchanges an authorization code obtained
// from the consent flow for an access and refresh token pair.
func (tm *TokenManager) GetTokensAuthorizationCodeGrant(ctx context.Context, authorizationCode string) (*TokenInfo, error) {
	form := url.Values{}
	form.Set("grant_type", GrantTypeAuthorizationCode)
	form.Set("code", authorizationCode)
	form.Set("client_id", tm.config.ClientID)
	form.Set("client_secret", tm.config.ClientSecret)
	return tm.getTokens(ctx, form)
}

// GetTokensRefreshGrant redeems a refresh token for a fresh token pair. The
// presented refresh token is consumed; the response carries its replacement.
func (tm *TokenManager) GetTokensRefreshGrant(ctx context.Context, refreshToken string) (*TokenInfo, error) {
	form := url.Values{}
	form.Set("grant_type", GrantTypeRefreshToken)
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", tm.config.ClientID)
	form.Set("client_secret", tm.config.ClientSecret)
	return tm.getTokens(ctx, form)
}

// GetTokensClientCredentialsGrant obtains a token for a service identity.
// subjectType selects enterprise or user scoping and subjectID names the
// subject.
func (tm *TokenManager) GetTokensClientCredentialsGrant(ctx context.Context, subjectType, subjectID string) (*TokenInfo, error) {
	form := url.Values{}
	form.Set("grant_type", GrantTypeClientCredentials)
	form.Set("client_id", tm.config.ClientID)
	form.Set("client_secret", tm.config.ClientSecret)
	form.Set("box_subject_type", subjectType)
	form.Set("box_subject_id", subjectID)
	return tm.getTokens(ctx, form)
}

// ExchangeOptions shapes a token-exchange (downscoping) request.
type ExchangeOptions struct {
	// SubjectToken is the token whose privileges are being narrowed.
	SubjectToken string

	// Scopes are the scopes the derived token keeps.
	Scopes []string

	// Resource optionally pins the derived token to a single resource URL.
	Resource string

	// SharedLink optionally grants access through a shared link context.
	SharedLink string

	// ActorToken and ActorTokenType identify an annotation actor, used for
	// app-user impersonation scenarios.
	ActorToken     string
	ActorTokenType string
}

// ExchangeToken trades a full token for a downscoped one. The derived token
// has no refresh token; callers re-exchange when it expires.
func (tm *TokenManager) ExchangeToken(ctx context.Context, opts ExchangeOptions) (*TokenInfo, error) {
	if opts.SubjectToken == "" {
		return nil, errors.New("tokenmanager: token exchange requires a subject token")
	}

	form := url.Values{}
	form.Set("grant_type", GrantTypeTokenExchange)
	form.Set("subject_token", opts.SubjectToken)
	form.Set("subject_token_type", TokenTypeAccessToken)
	if len(opts.Scopes) > 0 {
		form.Set("scope", strings.Join(opts.Scopes, " "))
	}
	if opts.Resource != "" {
		form.Set("resource", opts.Resource)
	}
	if opts.SharedLink != "" {
		form.Set("box_shared_link", opts.SharedLink)
	}
	if opts.ActorToken != "" {
		form.Set("actor_token", opts.ActorToken)
		actorType := opts.ActorTokenType
		if actorType == "" {
			actorType = TokenTypeIDToken
		}
		form.Set("actor_token_type", actorType)
	}
	return tm.getTokens(ctx, form)
}

// RevokeTokens invalidates a token pair server-side. Passing either member of
// the pair revokes both.
func (tm *TokenManager) RevokeTokens(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("client_id", tm.config.ClientID)
	form.Set("client_secret", tm.config.ClientSecret)
	form.Set("token", token)

	_, err := tm.requests.MakeRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodPost,
		URL:    tm.revokeURL(),
		Form:   form,
	})
	if err != nil {
		return classifyTokenError(err)
	}

	tm.log.Debug("Token revoked")
	return nil
}

// getTokens posts the grant request and parses the outcome.
func (tm *TokenManager) getTokens(ctx context.Context, form url.Values) (*TokenInfo, error) {
	resp, err := tm.requests.MakeRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodPost,
		URL:    tm.tokenURL(),
		Form:   form,
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	info, err := parseTokenResponse(resp.Body, form.Get("grant_type"))
	if err != nil {
		return nil, err
	}

	tm.log.Debug("Obtained access token",
		zap.String("grant type", form.Get("grant_type")),
		zap.Duration("ttl", info.AccessTokenTTL),
	)
	return info, nil
}

// classifyTokenError maps request failures onto the token error taxonomy.
// invalid_grant means dead credentials; every other API rejection is an
// unexpected endpoint response. Transport failures pass through unchanged.
func classifyTokenError(err error) error {
	var apiErr *response.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Code == "invalid_grant" {
		return fmt.Errorf("%w: %s", ErrExpiredAuth, apiErr.Message)
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedResponse, apiErr)
}

// tokenResponseBody matches the token endpoint's success payload.
type tokenResponseBody struct {
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	ExpiresIn       int64  `json:"expires_in"`
	TokenType       string `json:"token_type"`
	IssuedTokenType string `json:"issued_token_type"`
}

// parseTokenResponse validates and converts a success payload. The TTL is
// anchored at parse time so validity math never depends on the server clock.
func parseTokenResponse(body []byte, grantType string) (*TokenInfo, error) {
	var parsed tokenResponseBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrMalformedResponse)
	}
	if grantRequiresRefreshToken(grantType) && parsed.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh_token for %s grant", ErrMalformedResponse, grantType)
	}

	return &TokenInfo{
		AccessToken:    parsed.AccessToken,
		RefreshToken:   parsed.RefreshToken,
		AccessTokenTTL: time.Duration(parsed.ExpiresIn) * time.Second,
		AcquiredAt:     NowTimeFunc(),
		TokenType:      parsed.TokenType,
	}, nil
}

// grantRequiresRefreshToken reports whether the grant's contract includes a
// refresh token in the response.
func grantRequiresRefreshToken(grantType string) bool {
	return grantType == GrantTypeAuthorizationCode || grantType == GrantTypeRefreshToken
}
