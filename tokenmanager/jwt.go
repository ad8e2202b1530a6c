// tokenmanager/jwt.go
package tokenmanager

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/boxtools/go-box-client/httpclient"
	"github.com/boxtools/go-box-client/response"
)

// GetTokensJWTGrant authenticates as a server-side application using a signed
// JWT assertion. subjectType selects enterprise or user scoping and subjectID
// names the subject.
//
// This grant owns its own retry loop rather than delegating to the request
// layer: an assertion is single-use, so every attempt needs a fresh jti and a
// recomputed expiry. When the server rejects an assertion for clock skew, the
// next expiry is anchored on the server's Date header instead of the local
// clock.
func (tm *TokenManager) GetTokensJWTGrant(ctx context.Context, subjectType, subjectID string) (*TokenInfo, error) {
	appAuth := tm.config.AppAuth
	if appAuth == nil {
		return nil, errors.New("tokenmanager: jwt grant requires app auth configuration")
	}

	key, err := parseRSAPrivateKey(appAuth.PrivateKey, appAuth.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("tokenmanager: failed to parse app auth private key: %w", err)
	}

	expiresAt := NowTimeFunc().Add(appAuth.ExpirationTime)
	startTime := time.Now()

	for numRetries := 0; ; numRetries++ {
		assertion, err := tm.buildJWTAssertion(key, subjectType, subjectID, expiresAt)
		if err != nil {
			return nil, err
		}

		form := url.Values{}
		form.Set("grant_type", GrantTypeJWTBearer)
		form.Set("assertion", assertion)
		form.Set("client_id", tm.config.ClientID)
		form.Set("client_secret", tm.config.ClientSecret)

		resp, reqErr := tm.requests.MakeRequest(ctx, httpclient.RequestOptions{
			Method: http.MethodPost,
			URL:    tm.tokenURL(),
			Form:   form,
		})
		if reqErr == nil {
			return parseTokenResponse(resp.Body, GrantTypeJWTBearer)
		}

		if !isJWTAuthErrorRetryable(reqErr) {
			return nil, classifyTokenError(reqErr)
		}
		if numRetries >= tm.config.MaxRetryAttempts {
			return nil, classifyTokenError(httpclient.MarkMaxRetriesExceeded(reqErr))
		}

		wait, stopErr := tm.jwtRetryDelay(reqErr, numRetries+1, time.Since(startTime))
		if stopErr != nil {
			return nil, stopErr
		}
		tm.log.LogRetryAttempt("jwt_grant_retry", http.MethodPost, tm.tokenURL(), numRetries+1, "retryable assertion rejection", wait, reqErr)

		// Anchor the next assertion's validity window on the server clock
		// when we have it, so a skewed local clock cannot produce another
		// rejected exp claim.
		anchor := serverDate(reqErr)
		if anchor.IsZero() {
			anchor = NowTimeFunc()
		}
		expiresAt = anchor.Add(wait + appAuth.ExpirationTime)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// jwtRetryDelay applies the same decision chain the request executor uses for
// one failed attempt: the user-supplied strategy first, then the Retry-After
// header, then exponential backoff. A non-nil error return stops the grant
// and becomes its terminal outcome.
func (tm *TokenManager) jwtRetryDelay(reqErr error, attempt int, elapsed time.Duration) (time.Duration, error) {
	if tm.config.RetryStrategy != nil {
		wait, strategyErr := tm.config.RetryStrategy(httpclient.RetryStrategyOptions{
			Err:              reqErr,
			NumRetryAttempts: attempt,
			NumMaxRetries:    tm.config.MaxRetryAttempts,
			RetryInterval:    tm.config.RetryInterval,
			TotalElapsedTime: elapsed,
		})
		if strategyErr != nil {
			return 0, strategyErr
		}
		if wait < 0 {
			return 0, classifyTokenError(reqErr)
		}
		return wait, nil
	}

	var apiErr *response.APIError
	if errors.As(reqErr, &apiErr) {
		if wait, ok := httpclient.ParseRetryAfter(apiErr.ResponseHeaders); ok {
			return wait, nil
		}
	}

	return httpclient.CalculateBackoff(tm.config.RetryInterval, attempt), nil
}

// buildJWTAssertion signs a single-use assertion. The jti is fresh per call;
// the token endpoint rejects replayed identifiers.
func (tm *TokenManager) buildJWTAssertion(key *rsa.PrivateKey, subjectType, subjectID string, expiresAt time.Time) (string, error) {
	appAuth := tm.config.AppAuth

	claims := jwt.MapClaims{
		"iss":          tm.config.ClientID,
		"sub":          subjectID,
		"box_sub_type": subjectType,
		"aud":          tm.tokenURL(),
		"jti":          uuid.NewString(),
		"exp":          expiresAt.Unix(),
	}
	if appAuth.VerifyTimestamp {
		claims["iat"] = NowTimeFunc().Unix()
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(appAuth.Algorithm), claims)
	token.Header["kid"] = appAuth.KeyID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("tokenmanager: failed to sign jwt assertion: %w", err)
	}
	return signed, nil
}

// isJWTAuthErrorRetryable decides whether a rejected assertion is worth
// re-signing. Rate limits and server errors always are. An invalid_grant on a
// 400 is retryable only when the server dated its response and the complaint
// is about the exp or jti claim, both of which a fresh assertion can fix.
func isJWTAuthErrorRetryable(err error) bool {
	var transportErr *httpclient.TransportError
	if errors.As(err, &transportErr) {
		return true
	}

	var apiErr *response.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
		return true
	}

	if apiErr.StatusCode == http.StatusBadRequest && apiErr.Code == "invalid_grant" {
		if apiErr.ResponseHeaders.Get("Date") == "" {
			return false
		}
		description := strings.ToLower(apiErr.Message)
		return strings.Contains(description, "exp") || strings.Contains(description, "jti")
	}

	return false
}

// serverDate extracts the server's Date header from a failed attempt.
func serverDate(err error) time.Time {
	var apiErr *response.APIError
	if !errors.As(err, &apiErr) {
		return time.Time{}
	}
	at, parseErr := http.ParseTime(apiErr.ResponseHeaders.Get("Date"))
	if parseErr != nil {
		return time.Time{}
	}
	return at
}

// parseRSAPrivateKey decodes a PEM-encoded RSA key, decrypting it when a
// passphrase is supplied.
func parseRSAPrivateKey(pemKey, passphrase string) (*rsa.PrivateKey, error) {
	if passphrase == "" {
		return jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey))
	}

	raw, err := ssh.ParseRawPrivateKeyWithPassphrase([]byte(pemKey), []byte(passphrase))
	if err != nil {
		return nil, err
	}
	key, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return key, nil
}
