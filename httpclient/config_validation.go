// httpclient/config_validation.go
// Description: This file contains the default values and validation rules for the client configuration.
package httpclient

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	DefaultAPIRootURL    = "https://api.box.com/2.0"
	DefaultUploadRootURL = "https://upload.box.com/api/2.0"
	DefaultOAuthRootURL  = "https://api.box.com/oauth2"

	DefaultLogLevelString        = "LogLevelInfo"
	DefaultLogOutputFormatString = "json"
	DefaultHideSensitiveData     = true

	DefaultMaxRetryAttempts      = 5
	DefaultRetryInterval         = 2 * time.Second
	DefaultCustomTimeout         = 60 * time.Second
	DefaultUploadTimeout         = 10 * time.Minute
	DefaultTokenRefreshBuffer    = 2 * time.Minute
	DefaultExpiredBuffer         = 30 * time.Second
	DefaultMaxConcurrentRequests = 10
	DefaultFollowRedirects       = false
	DefaultMaxRedirects          = 5

	DefaultAppAuthExpirationTime = 30 * time.Second
	MaxAppAuthExpirationTime     = 60 * time.Second
)

// validAppAuthAlgorithms are the signing algorithms accepted for the
// JWT-bearer grant.
var validAppAuthAlgorithms = []string{"RS256", "RS384", "RS512"}

// SetDefaultValuesClientConfig sets default values for the client configuration,
// ensuring that all fields have a valid or minimum value.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	if config.APIRootURL == "" {
		config.APIRootURL = DefaultAPIRootURL
	}
	if config.UploadRootURL == "" {
		config.UploadRootURL = DefaultUploadRootURL
	}
	if config.OAuthRootURL == "" {
		config.OAuthRootURL = DefaultOAuthRootURL
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevelString
	}
	if config.LogOutputFormat == "" {
		config.LogOutputFormat = DefaultLogOutputFormatString
	}
	if config.MaxRetryAttempts == 0 {
		config.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = DefaultRetryInterval
	}
	if config.CustomTimeout == 0 {
		config.CustomTimeout = DefaultCustomTimeout
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = DefaultUploadTimeout
	}
	if config.TokenRefreshBufferPeriod == 0 {
		config.TokenRefreshBufferPeriod = DefaultTokenRefreshBuffer
	}
	if config.ExpiredBufferPeriod == 0 {
		config.ExpiredBufferPeriod = DefaultExpiredBuffer
	}
	if config.MaxConcurrentRequests == 0 {
		config.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if config.MaxRedirects == 0 {
		config.MaxRedirects = DefaultMaxRedirects
	}
	if config.AppAuth != nil {
		if config.AppAuth.ExpirationTime == 0 {
			config.AppAuth.ExpirationTime = DefaultAppAuthExpirationTime
		}
		if config.AppAuth.Algorithm == "" {
			config.AppAuth.Algorithm = "RS256"
		}
	}
}

func validateClientConfig(config ClientConfig, populateDefaults bool) error {
	if populateDefaults {
		SetDefaultValuesClientConfig(&config)
	}

	validLogLevels := []string{
		"LogLevelDebug",
		"LogLevelInfo",
		"LogLevelWarn",
		"LogLevelError",
		"LogLevelPanic",
		"LogLevelFatal",
	}
	if !slices.Contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validLogFormats := []string{
		"json",
		"pretty",
	}
	if !slices.Contains(validLogFormats, config.LogOutputFormat) {
		return fmt.Errorf("invalid log output format: %s", config.LogOutputFormat)
	}

	if config.MaxRetryAttempts < 0 {
		return errors.New("max retry attempts cannot be less than 0")
	}

	if config.RetryInterval < 0 {
		return errors.New("retry interval cannot be less than 0")
	}

	if config.CustomTimeout < 0 || config.UploadTimeout < 0 {
		return errors.New("timeout cannot be less than 0 seconds")
	}

	if config.TokenRefreshBufferPeriod < 0 || config.ExpiredBufferPeriod < 0 {
		return errors.New("token buffer period cannot be less than 0 seconds")
	}

	if config.MaxConcurrentRequests < 1 {
		return errors.New("maximum concurrent requests cannot be less than 1")
	}

	if config.FollowRedirects && config.MaxRedirects < 1 {
		return errors.New("max redirects cannot be less than 1")
	}

	if config.AppAuth != nil {
		if err := validateAppAuthConfig(*config.AppAuth); err != nil {
			return err
		}
	}

	return nil
}

func validateAppAuthConfig(appAuth AppAuthConfig) error {
	if appAuth.PrivateKey == "" {
		return errors.New("app auth requires a private key")
	}
	if !slices.Contains(validAppAuthAlgorithms, appAuth.Algorithm) {
		return fmt.Errorf("invalid app auth algorithm: %s", appAuth.Algorithm)
	}
	if appAuth.ExpirationTime <= 0 || appAuth.ExpirationTime > MaxAppAuthExpirationTime {
		return fmt.Errorf("app auth expiration time must be in (0s, %s], got %s", MaxAppAuthExpirationTime, appAuth.ExpirationTime)
	}
	return nil
}
