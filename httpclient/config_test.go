// httpclient/config_test.go
package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultValuesClientConfig(t *testing.T) {
	config := ClientConfig{}
	SetDefaultValuesClientConfig(&config)

	assert.Equal(t, DefaultAPIRootURL, config.APIRootURL)
	assert.Equal(t, DefaultUploadRootURL, config.UploadRootURL)
	assert.Equal(t, DefaultOAuthRootURL, config.OAuthRootURL)
	assert.Equal(t, DefaultMaxRetryAttempts, config.MaxRetryAttempts)
	assert.Equal(t, DefaultRetryInterval, config.RetryInterval)
	assert.Equal(t, DefaultCustomTimeout, config.CustomTimeout)
	assert.Equal(t, DefaultUploadTimeout, config.UploadTimeout)
	assert.Equal(t, DefaultTokenRefreshBuffer, config.TokenRefreshBufferPeriod)
	assert.Equal(t, DefaultExpiredBuffer, config.ExpiredBufferPeriod)
	assert.Equal(t, DefaultMaxConcurrentRequests, config.MaxConcurrentRequests)
	assert.Equal(t, DefaultMaxRedirects, config.MaxRedirects)
}

func TestSetDefaultValuesClientConfigKeepsExplicitValues(t *testing.T) {
	config := ClientConfig{
		APIRootURL:       "https://example.test/api",
		MaxRetryAttempts: 2,
		RetryInterval:    time.Second,
	}
	SetDefaultValuesClientConfig(&config)

	assert.Equal(t, "https://example.test/api", config.APIRootURL)
	assert.Equal(t, 2, config.MaxRetryAttempts)
	assert.Equal(t, time.Second, config.RetryInterval)
}

func TestSetDefaultValuesClientConfigAppAuth(t *testing.T) {
	config := ClientConfig{AppAuth: &AppAuthConfig{PrivateKey: "pem"}}
	SetDefaultValuesClientConfig(&config)

	assert.Equal(t, DefaultAppAuthExpirationTime, config.AppAuth.ExpirationTime)
	assert.Equal(t, "RS256", config.AppAuth.Algorithm)
}

func TestValidateClientConfig(t *testing.T) {
	base := ClientConfig{}
	SetDefaultValuesClientConfig(&base)

	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr string
	}{
		{"valid defaults", func(c *ClientConfig) {}, ""},
		{"bad log level", func(c *ClientConfig) { c.LogLevel = "verbose" }, "invalid log level"},
		{"bad log format", func(c *ClientConfig) { c.LogOutputFormat = "xml" }, "invalid log output format"},
		{"negative retries", func(c *ClientConfig) { c.MaxRetryAttempts = -1 }, "max retry attempts"},
		{"negative retry interval", func(c *ClientConfig) { c.RetryInterval = -time.Second }, "retry interval"},
		{"negative timeout", func(c *ClientConfig) { c.CustomTimeout = -time.Second }, "timeout"},
		{"zero concurrency", func(c *ClientConfig) { c.MaxConcurrentRequests = 0 }, "concurrent requests"},
		{"redirects enabled without budget", func(c *ClientConfig) { c.FollowRedirects = true; c.MaxRedirects = 0 }, "max redirects"},
		{"app auth without key", func(c *ClientConfig) {
			c.AppAuth = &AppAuthConfig{Algorithm: "RS256", ExpirationTime: 30 * time.Second}
		}, "private key"},
		{"app auth bad algorithm", func(c *ClientConfig) {
			c.AppAuth = &AppAuthConfig{PrivateKey: "pem", Algorithm: "HS256", ExpirationTime: 30 * time.Second}
		}, "algorithm"},
		{"app auth expiration too long", func(c *ClientConfig) {
			c.AppAuth = &AppAuthConfig{PrivateKey: "pem", Algorithm: "RS256", ExpirationTime: 2 * time.Minute}
		}, "expiration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := base.Copy()
			tt.mutate(&config)
			err := validateClientConfig(config, false)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientConfigCopyIsDeep(t *testing.T) {
	original := ClientConfig{AppAuth: &AppAuthConfig{KeyID: "kid-1"}}
	copied := original.Copy()
	copied.AppAuth.KeyID = "kid-2"

	assert.Equal(t, "kid-1", original.AppAuth.KeyID)
}

func TestClientConfigExtend(t *testing.T) {
	original := ClientConfig{
		MaxRetryAttempts: 5,
		RetryInterval:    2 * time.Second,
		CustomTimeout:    time.Minute,
	}

	attempts := 1
	interval := 50 * time.Millisecond
	extended := original.Extend(ConfigOverrides{
		MaxRetryAttempts: &attempts,
		RetryInterval:    &interval,
	})

	assert.Equal(t, 1, extended.MaxRetryAttempts)
	assert.Equal(t, 50*time.Millisecond, extended.RetryInterval)
	assert.Equal(t, time.Minute, extended.CustomTimeout)

	// The shared config must be untouched.
	assert.Equal(t, 5, original.MaxRetryAttempts)
	assert.Equal(t, 2*time.Second, original.RetryInterval)
}

func TestClientConfigExtendEmptyOverrides(t *testing.T) {
	original := ClientConfig{MaxRetryAttempts: 3, RetryInterval: time.Second}
	extended := original.Extend(ConfigOverrides{})

	assert.Equal(t, original.MaxRetryAttempts, extended.MaxRetryAttempts)
	assert.Equal(t, original.RetryInterval, extended.RetryInterval)
}
