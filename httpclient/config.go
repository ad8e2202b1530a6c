// httpclient/config.go
package httpclient

import (
	"context"
	"time"
)

// ClientConfig is the merged configuration snapshot for the client. It is
// immutable by convention: once constructed it is never mutated in place.
// Copy and Extend produce new values, and a per-request copy is derived for
// request-scoped overrides so the shared instance is never touched.
type ClientConfig struct {
	// Application credentials
	ClientID     string
	ClientSecret string

	// Root URLs
	APIRootURL    string
	UploadRootURL string
	OAuthRootURL  string

	// Retry behaviour
	MaxRetryAttempts int
	RetryInterval    time.Duration
	RetryStrategy    RetryStrategy

	// Timeouts
	CustomTimeout time.Duration // transport timeout for buffered requests
	UploadTimeout time.Duration // longer transport timeout for uploads

	// Token lifecycle buffers
	TokenRefreshBufferPeriod time.Duration // stale window: token still usable, refresh proactively
	ExpiredBufferPeriod      time.Duration // treat tokens expiring within this window as expired

	// Server-side app auth (JWT) settings
	AppAuth *AppAuthConfig

	// Proxy
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string

	// Misc
	MaxConcurrentRequests int
	FollowRedirects       bool
	MaxRedirects          int

	// Log
	LogLevel          string
	LogOutputFormat   string // "json" or "pretty"
	HideSensitiveData bool
}

// AppAuthConfig holds the key material and claim settings for the JWT-bearer
// grant.
type AppAuthConfig struct {
	KeyID      string
	PrivateKey string // PEM-encoded RSA private key
	Passphrase string // optional, for encrypted keys

	// Algorithm must be one of RS256, RS384, RS512.
	Algorithm string

	// ExpirationTime is the assertion validity window, in (0, 60] seconds.
	ExpirationTime time.Duration

	VerifyTimestamp bool
}

// RetryStrategyOptions is the context handed to a user-supplied RetryStrategy
// for each failed attempt.
type RetryStrategyOptions struct {
	Err              error
	NumRetryAttempts int
	NumMaxRetries    int
	RetryInterval    time.Duration
	TotalElapsedTime time.Duration
}

// RetryStrategy lets callers take over retry-delay decisions. A non-negative
// duration with a nil error schedules the next attempt after that delay. A
// non-nil error replaces the current error and stops retrying. A negative
// duration with a nil error stops retrying and surfaces the current error.
type RetryStrategy func(RetryStrategyOptions) (time.Duration, error)

// ConfigOverrides carries request-scoped configuration merged on top of the
// shared ClientConfig for a single logical call. Pointer fields distinguish
// "not set" from zero values.
type ConfigOverrides struct {
	MaxRetryAttempts *int
	RetryInterval    *time.Duration
	RetryStrategy    RetryStrategy
	CustomTimeout    *time.Duration
}

// Copy returns a deep copy of the configuration.
func (c ClientConfig) Copy() ClientConfig {
	out := c
	if c.AppAuth != nil {
		appAuth := *c.AppAuth
		out.AppAuth = &appAuth
	}
	return out
}

// Extend returns a new ClientConfig with the overrides merged on top of c.
// The receiver is never modified.
func (c ClientConfig) Extend(overrides ConfigOverrides) ClientConfig {
	out := c.Copy()
	if overrides.MaxRetryAttempts != nil {
		out.MaxRetryAttempts = *overrides.MaxRetryAttempts
	}
	if overrides.RetryInterval != nil {
		out.RetryInterval = *overrides.RetryInterval
	}
	if overrides.RetryStrategy != nil {
		out.RetryStrategy = overrides.RetryStrategy
	}
	if overrides.CustomTimeout != nil {
		out.CustomTimeout = *overrides.CustomTimeout
	}
	return out
}

// TokenProvider supplies a valid access token for outgoing requests. Sessions
// implement this; the client facade only depends on this narrow surface.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}
