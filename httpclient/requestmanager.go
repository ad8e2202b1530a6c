// httpclient/requestmanager.go
package httpclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boxtools/go-box-client/concurrency"
	"github.com/boxtools/go-box-client/events"
	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/proxy"
	"github.com/boxtools/go-box-client/redirecthandler"
)

// RequestOptions describes one logical API call handed to the RequestManager.
type RequestOptions struct {
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
	Query     url.Values
	Form      url.Values
	Multipart []MultipartField

	// Overrides scopes request-specific configuration on top of the shared
	// config without mutating it.
	Overrides *ConfigOverrides
}

// RequestManager wraps each logical API call in a fresh RequestExecutor
// instance so concurrent calls get independent retry timelines. It is safe
// for concurrent use.
type RequestManager struct {
	config  ClientConfig
	emitter *events.Emitter
	http    *http.Client
	log     logger.Logger
	permits *concurrency.ConcurrencyHandler
}

// NewRequestManager builds a RequestManager with a transport configured from
// the shared config (proxy, redirect policy). Timeouts are applied
// per-attempt by the executor, so the underlying http.Client carries none.
func NewRequestManager(config ClientConfig, emitter *events.Emitter, log logger.Logger) (*RequestManager, error) {
	if emitter == nil {
		emitter = events.NewEmitter()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	httpClient := &http.Client{}
	if err := proxy.InitializeProxy(httpClient, config.ProxyURL, config.ProxyUsername, config.ProxyPassword, log); err != nil {
		return nil, err
	}
	if err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, log); err != nil {
		return nil, err
	}

	permits := concurrency.NewConcurrencyHandler(config.MaxConcurrentRequests, log, &concurrency.ConcurrencyMetrics{})

	return &RequestManager{
		config:  config,
		emitter: emitter,
		http:    httpClient,
		log:     log,
		permits: permits,
	}, nil
}

// Events exposes the emitter terminal request outcomes are published on.
func (m *RequestManager) Events() *events.Emitter {
	return m.emitter
}

// Metrics exposes the request volume counters.
func (m *RequestManager) Metrics() *concurrency.ConcurrencyMetrics {
	return m.permits.Metrics
}

// MakeRequest executes a buffered request with retry handling and returns the
// final response. Errors reach the caller unwrapped, carrying status code,
// redacted request snapshot, and the max-retries flag where applicable.
func (m *RequestManager) MakeRequest(ctx context.Context, opts RequestOptions) (*Response, error) {
	executor, err := m.newExecutor(opts)
	if err != nil {
		return nil, err
	}
	return executor.Execute(ctx)
}

// MakeStreamingRequest executes the request in streaming mode, without retry
// support. The caller owns closing the response body.
func (m *RequestManager) MakeStreamingRequest(ctx context.Context, opts RequestOptions) (*http.Response, error) {
	executor, err := m.newExecutor(opts)
	if err != nil {
		return nil, err
	}
	return executor.ExecuteStream(ctx)
}

func (m *RequestManager) newExecutor(opts RequestOptions) (*RequestExecutor, error) {
	config := m.config
	if opts.Overrides != nil {
		config = m.config.Extend(*opts.Overrides)
	}

	return NewRequestExecutor(config, m.emitter, m.http, m.log, m.permits, Request{
		Method:    opts.Method,
		URL:       opts.URL,
		Header:    opts.Header,
		Body:      opts.Body,
		Query:     opts.Query,
		Form:      opts.Form,
		Multipart: opts.Multipart,
	})
}
