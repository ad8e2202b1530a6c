// httpclient/client.go
/* The httpclient package provides the request core for the Box API client:
a configurable Client facade bound to an authentication session, a
RequestManager that scopes every logical call to its own retrying executor,
and the supporting configuration types. The client supports bearer-token
sessions of every grant family, structured error handling, and flexible
configuration with sane defaults. */
package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/boxtools/go-box-client/events"
	"github.com/boxtools/go-box-client/logger"
)

// ExpiredTokensHandler is implemented by sessions that need to run
// invalidation side effects (clearing an external token store) when an API
// call fails with expired credentials.
type ExpiredTokensHandler interface {
	HandleExpiredTokensError(cause error) error
}

// Client binds a token-providing session to a RequestManager and exposes the
// verb methods resource managers are built on.
type Client struct {
	// Private
	config     ClientConfig
	session    TokenProvider
	ipAddress  string
	sharedLink string

	// Exported
	Logger   logger.Logger
	Requests *RequestManager
	Events   *events.Emitter
}

// BuildClient creates a new API client with the provided configuration and
// session. The session supplies access tokens; BasicSession, PersistentSession,
// AppAuthSession and CCGSession all qualify.
func BuildClient(config ClientConfig, session TokenProvider, populateDefaultValues bool) (*Client, error) {
	if session == nil {
		return nil, errors.New("httpclient: a session is required, see the sessions package")
	}

	// Deep-copy first: AppAuth is a pointer, and defaulting must never write
	// through into the caller's struct.
	config = config.Copy()
	if populateDefaultValues {
		SetDefaultValuesClientConfig(&config)
	}
	if err := validateClientConfig(config, false); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
	log := logger.BuildLogger(parsedLogLevel, config.LogOutputFormat)

	emitter := events.NewEmitter()
	requestManager, err := NewRequestManager(config, emitter, log)
	if err != nil {
		return nil, err
	}

	client := &Client{
		config:   config,
		session:  session,
		Logger:   log,
		Requests: requestManager,
		Events:   emitter,
	}

	log.Debug("New API client initialized",
		zap.String("API Root URL", config.APIRootURL),
		zap.Int("Max Retry Attempts", config.MaxRetryAttempts),
		zap.Duration("Retry Interval", config.RetryInterval),
		zap.Duration("Custom Timeout", config.CustomTimeout),
		zap.Duration("Token Refresh Buffer Period", config.TokenRefreshBufferPeriod),
		zap.Int("Max Concurrent Requests", config.MaxConcurrentRequests),
		zap.Bool("Follow Redirects", config.FollowRedirects),
		zap.Bool("Hide Sensitive Data In Logs", config.HideSensitiveData),
	)

	return client, nil
}

// WithIPAddress returns a derived client that stamps the given address into
// X-Forwarded-For on every request. The receiver is unchanged.
func (c *Client) WithIPAddress(ip string) *Client {
	derived := *c
	derived.ipAddress = ip
	return &derived
}

// WithSharedLink returns a derived client scoped to a shared-link context.
// The BoxApi header it produces is treated as sensitive and redacted
// everywhere outgoing headers are surfaced.
func (c *Client) WithSharedLink(sharedLinkURL, password string) *Client {
	value := "shared_link=" + sharedLinkURL
	if password != "" {
		value += "&shared_link_password=" + password
	}
	derived := *c
	derived.sharedLink = value
	return &derived
}

// Config returns a copy of the client configuration.
func (c *Client) Config() ClientConfig {
	return c.config.Copy()
}

// apiURL resolves an endpoint against the configured API root. Absolute URLs
// pass through untouched so callers can follow server-provided locations.
func (c *Client) apiURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.config.APIRootURL + "/" + strings.TrimPrefix(endpoint, "/")
}

// authHeaders produces the per-request header set: bearer token plus the
// optional X-Forwarded-For and shared-link headers.
func (c *Client) authHeaders(token string) http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	if c.ipAddress != "" {
		header.Set("X-Forwarded-For", c.ipAddress)
	}
	if c.sharedLink != "" {
		header.Set("BoxApi", c.sharedLink)
	}
	return header
}
