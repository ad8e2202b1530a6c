// httpclient/config_load.go
// Description: This file contains functions to load configuration values from a config file or environment variables.
package httpclient

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigFromFile loads client configuration settings from a JSON, YAML or
// TOML file. Missing fields fall back to the package defaults.
func LoadConfigFromFile(filepath string) (*ClientConfig, error) {
	v := viper.New()
	v.SetConfigFile(filepath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var config ClientConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	SetDefaultValuesClientConfig(&config)
	return &config, nil
}

// LoadConfigFromEnv loads client configuration settings from BOX_-prefixed
// environment variables. Unset variables fall back to the package defaults.
func LoadConfigFromEnv() (*ClientConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("BOX")
	v.AutomaticEnv()

	v.SetDefault("API_ROOT_URL", DefaultAPIRootURL)
	v.SetDefault("UPLOAD_ROOT_URL", DefaultUploadRootURL)
	v.SetDefault("OAUTH_ROOT_URL", DefaultOAuthRootURL)
	v.SetDefault("LOG_LEVEL", DefaultLogLevelString)
	v.SetDefault("LOG_OUTPUT_FORMAT", DefaultLogOutputFormatString)
	v.SetDefault("HIDE_SENSITIVE_DATA", DefaultHideSensitiveData)
	v.SetDefault("MAX_RETRY_ATTEMPTS", DefaultMaxRetryAttempts)
	v.SetDefault("RETRY_INTERVAL", DefaultRetryInterval)
	v.SetDefault("CUSTOM_TIMEOUT", DefaultCustomTimeout)
	v.SetDefault("UPLOAD_TIMEOUT", DefaultUploadTimeout)
	v.SetDefault("TOKEN_REFRESH_BUFFER_PERIOD", DefaultTokenRefreshBuffer)
	v.SetDefault("EXPIRED_BUFFER_PERIOD", DefaultExpiredBuffer)
	v.SetDefault("MAX_CONCURRENT_REQUESTS", DefaultMaxConcurrentRequests)
	v.SetDefault("FOLLOW_REDIRECTS", DefaultFollowRedirects)
	v.SetDefault("MAX_REDIRECTS", DefaultMaxRedirects)

	config := &ClientConfig{
		ClientID:                 v.GetString("CLIENT_ID"),
		ClientSecret:             v.GetString("CLIENT_SECRET"),
		APIRootURL:               v.GetString("API_ROOT_URL"),
		UploadRootURL:            v.GetString("UPLOAD_ROOT_URL"),
		OAuthRootURL:             v.GetString("OAUTH_ROOT_URL"),
		MaxRetryAttempts:         v.GetInt("MAX_RETRY_ATTEMPTS"),
		RetryInterval:            v.GetDuration("RETRY_INTERVAL"),
		CustomTimeout:            v.GetDuration("CUSTOM_TIMEOUT"),
		UploadTimeout:            v.GetDuration("UPLOAD_TIMEOUT"),
		TokenRefreshBufferPeriod: v.GetDuration("TOKEN_REFRESH_BUFFER_PERIOD"),
		ExpiredBufferPeriod:      v.GetDuration("EXPIRED_BUFFER_PERIOD"),
		ProxyURL:                 v.GetString("PROXY_URL"),
		ProxyUsername:            v.GetString("PROXY_USERNAME"),
		ProxyPassword:            v.GetString("PROXY_PASSWORD"),
		MaxConcurrentRequests:    v.GetInt("MAX_CONCURRENT_REQUESTS"),
		FollowRedirects:          v.GetBool("FOLLOW_REDIRECTS"),
		MaxRedirects:             v.GetInt("MAX_REDIRECTS"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		LogOutputFormat:          v.GetString("LOG_OUTPUT_FORMAT"),
		HideSensitiveData:        v.GetBool("HIDE_SENSITIVE_DATA"),
	}

	// App auth is only wired up when key material is present.
	if privateKey := v.GetString("APP_AUTH_PRIVATE_KEY"); privateKey != "" {
		expiration := v.GetDuration("APP_AUTH_EXPIRATION_TIME")
		if expiration == 0 {
			expiration = DefaultAppAuthExpirationTime
		}
		algorithm := v.GetString("APP_AUTH_ALGORITHM")
		if algorithm == "" {
			algorithm = "RS256"
		}
		config.AppAuth = &AppAuthConfig{
			KeyID:           v.GetString("APP_AUTH_KEY_ID"),
			PrivateKey:      privateKey,
			Passphrase:      v.GetString("APP_AUTH_PASSPHRASE"),
			Algorithm:       algorithm,
			ExpirationTime:  expiration,
			VerifyTimestamp: v.GetBool("APP_AUTH_VERIFY_TIMESTAMP"),
		}
	}

	return config, nil
}
