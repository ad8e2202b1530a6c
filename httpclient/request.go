// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boxtools/go-box-client/concurrency"
	"github.com/boxtools/go-box-client/events"
	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/redact"
	"github.com/boxtools/go-box-client/response"
	"github.com/boxtools/go-box-client/status"
	"github.com/boxtools/go-box-client/version"
)

// jwtBearerGrantType marks token requests whose retries are owned by the
// token manager: each retry needs a freshly signed assertion, which this
// executor cannot produce.
const jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// Request describes one logical HTTP call. Exactly one of Body, Form or
// Multipart should be populated. Requests are value types; the executor
// never mutates caller-supplied state.
type Request struct {
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
	Query     url.Values
	Form      url.Values
	Multipart []MultipartField
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestExecutor executes exactly one logical HTTP call to completion,
// handling transient-failure retries transparently to the caller. Each
// executor owns its own retry state; executors are single-use and not safe
// for concurrent use. Independent calls get independent executors.
type RequestExecutor struct {
	config  ClientConfig
	emitter *events.Emitter
	http    *http.Client
	log     logger.Logger
	permits *concurrency.ConcurrencyHandler

	request     Request
	isRetryable bool
	numRetries  int
	startTime   time.Time
}

// NewRequestExecutor creates an executor for a single logical call.
// Construction fails if the emitter, transport, or logger is missing, or the
// request is malformed. Retryability is fixed here: multipart uploads and
// JWT-bearer grant requests are never retried by the executor.
func NewRequestExecutor(config ClientConfig, emitter *events.Emitter, httpClient *http.Client, log logger.Logger, permits *concurrency.ConcurrencyHandler, req Request) (*RequestExecutor, error) {
	if emitter == nil {
		return nil, errors.New("httpclient: request executor requires an event emitter")
	}
	if httpClient == nil {
		return nil, errors.New("httpclient: request executor requires an http client")
	}
	if log == nil {
		return nil, errors.New("httpclient: request executor requires a logger")
	}
	if req.Method == "" || req.URL == "" {
		return nil, errors.New("httpclient: request requires a method and url")
	}
	if config.MaxRetryAttempts < 0 {
		return nil, errors.New("httpclient: max retry attempts cannot be negative")
	}

	retryable := len(req.Multipart) == 0 && req.Form.Get("grant_type") != jwtBearerGrantType

	return &RequestExecutor{
		config:      config,
		emitter:     emitter,
		http:        httpClient,
		log:         log,
		permits:     permits,
		request:     req,
		isRetryable: retryable,
	}, nil
}

// Execute performs the buffered request, retrying temporary failures until
// success, a permanent failure, or retry budget exhaustion. Retries are
// strictly sequential: attempt N+1 never starts before attempt N's outcome
// has been classified and a delay computed.
func (e *RequestExecutor) Execute(ctx context.Context) (*Response, error) {
	e.startTime = time.Now()
	e.numRetries = 0

	for {
		resp, err := e.attempt(ctx)

		if err == nil && resp.StatusCode < 400 {
			e.finish(nil, resp)
			return resp, nil
		}

		currErr, temporary := e.classify(resp, err)

		if !temporary || !e.isRetryable {
			e.finish(currErr, resp)
			return nil, currErr
		}

		wait, retryErr := e.nextRetryDelay(currErr, resp)
		if retryErr != nil {
			e.finish(retryErr, resp)
			return nil, retryErr
		}

		e.log.LogRetryAttempt("transient_failure", e.request.Method, e.request.URL, e.numRetries, reasonFor(resp, err), wait, currErr)
		if e.permits != nil {
			e.permits.RecordRetry()
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			e.finish(ctx.Err(), resp)
			return nil, ctx.Err()
		}
	}
}

// classify sorts an attempt outcome into temporary (retry-eligible) or
// permanent. Transport failures without a response are temporary. Status
// codes in [500,599] except 507, plus 408 and 429, are temporary; everything
// else is permanent.
func (e *RequestExecutor) classify(resp *Response, err error) (error, bool) {
	if err != nil {
		return &TransportError{Err: err, Method: e.request.Method, URL: e.request.URL}, true
	}
	return e.newAPIError(resp), status.IsTemporaryStatusCode(resp.StatusCode)
}

// nextRetryDelay applies the retry decision chain for one failed attempt:
// budget check, then the user-supplied strategy, then the Retry-After header,
// then exponential backoff with jitter. A non-nil error return means retrying
// stops and that error is the terminal outcome.
func (e *RequestExecutor) nextRetryDelay(currErr error, resp *Response) (time.Duration, error) {
	if e.numRetries >= e.config.MaxRetryAttempts {
		return 0, MarkMaxRetriesExceeded(currErr)
	}
	e.numRetries++

	if e.config.RetryStrategy != nil {
		wait, strategyErr := e.config.RetryStrategy(RetryStrategyOptions{
			Err:              currErr,
			NumRetryAttempts: e.numRetries,
			NumMaxRetries:    e.config.MaxRetryAttempts,
			RetryInterval:    e.config.RetryInterval,
			TotalElapsedTime: time.Since(e.startTime),
		})
		if strategyErr != nil {
			return 0, strategyErr
		}
		if wait < 0 {
			return 0, currErr
		}
		return wait, nil
	}

	if resp != nil {
		if wait, ok := ParseRetryAfter(resp.Header); ok {
			return wait, nil
		}
	}

	return CalculateBackoff(e.config.RetryInterval, e.numRetries), nil
}

// attempt issues one HTTP request and buffers the response.
func (e *RequestExecutor) attempt(ctx context.Context) (*Response, error) {
	if e.permits != nil {
		requestID, err := e.permits.AcquireConcurrencyPermit(ctx)
		if err != nil {
			return nil, err
		}
		defer e.permits.ReleaseConcurrencyPermit(requestID)
	}

	attemptCtx := ctx
	if timeout := e.timeoutForRequest(); timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := e.buildHTTPRequest(attemptCtx)
	if err != nil {
		return nil, err
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// buildHTTPRequest constructs a fresh *http.Request for an attempt. The body
// is rebuilt from the buffered descriptor each time so retries never re-send
// a consumed reader.
func (e *RequestExecutor) buildHTTPRequest(ctx context.Context) (*http.Request, error) {
	requestURL := e.request.URL
	if len(e.request.Query) > 0 {
		separator := "?"
		if strings.Contains(requestURL, "?") {
			separator = "&"
		}
		requestURL += separator + e.request.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case len(e.request.Multipart) > 0:
		buf, multipartContentType, err := buildMultipartBody(e.request.Multipart)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = multipartContentType
	case len(e.request.Form) > 0:
		body = strings.NewReader(e.request.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case len(e.request.Body) > 0:
		body = bytes.NewReader(e.request.Body)
	}

	req, err := http.NewRequestWithContext(ctx, e.request.Method, requestURL, body)
	if err != nil {
		return nil, err
	}

	for key, values := range e.request.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	return req, nil
}

// timeoutForRequest picks the per-attempt transport timeout; uploads get the
// longer budget.
func (e *RequestExecutor) timeoutForRequest() time.Duration {
	if len(e.request.Multipart) > 0 {
		return e.config.UploadTimeout
	}
	return e.config.CustomTimeout
}

// newAPIError builds a structured error for a failed response, attaching a
// redacted snapshot of the outgoing request headers.
func (e *RequestExecutor) newAPIError(resp *Response) *response.APIError {
	apiErr := response.NewAPIError(resp.StatusCode, e.request.Method, e.request.URL, resp.Header, resp.Body)
	apiErr.RequestHeaders = redact.Headers(e.request.Header)
	return apiErr
}

// finish publishes the terminal outcome on the event bus, exactly once per
// logical call. Emission is observability only and never affects control
// flow. Sensitive request headers are redacted before the event leaves the
// executor.
func (e *RequestExecutor) finish(err error, resp *Response) {
	if err != nil {
		statusCode := 0
		rawResponse := ""
		if resp != nil {
			statusCode = resp.StatusCode
			rawResponse = string(resp.Body)
		}
		e.log.LogError("request_failed", e.request.Method, e.request.URL, statusCode, err, rawResponse)
	}

	event := events.Event{
		Name:           events.ResponseEvent,
		Method:         e.request.Method,
		URL:            e.request.URL,
		RequestHeaders: redact.Headers(e.request.Header),
		Err:            err,
	}
	if resp != nil {
		event.StatusCode = resp.StatusCode
	}
	e.emitter.Emit(event)
}

func reasonFor(resp *Response, err error) string {
	if err != nil {
		return "transport error"
	}
	if resp != nil {
		return http.StatusText(resp.StatusCode)
	}
	return "unknown"
}
