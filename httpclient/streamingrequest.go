// httpclient/streamingrequest.go
package httpclient

import (
	"context"
	"io"
	"net/http"
	"sync"
)

// maxErrorBodyBytes bounds how much of a failed streaming response body is
// buffered for error reporting.
const maxErrorBodyBytes = 1 << 20

// ExecuteStream performs the request in streaming mode and hands the raw
// response back to the caller, who owns closing the body. Streaming mode
// never retries; client-error responses are converted to errors before the
// stream is returned so consumers never see a 4xx body as payload.
//
// Streaming calls count against MaxConcurrentRequests like buffered ones: the
// permit is held until the caller closes the body.
func (e *RequestExecutor) ExecuteStream(ctx context.Context) (*http.Response, error) {
	release := func() {}
	if e.permits != nil {
		requestID, err := e.permits.AcquireConcurrencyPermit(ctx)
		if err != nil {
			e.finish(err, nil)
			return nil, err
		}
		var once sync.Once
		release = func() {
			once.Do(func() { e.permits.ReleaseConcurrencyPermit(requestID) })
		}
	}

	req, err := e.buildHTTPRequest(ctx)
	if err != nil {
		release()
		e.finish(err, nil)
		return nil, err
	}

	resp, err := e.http.Do(req)
	if err != nil {
		release()
		transportErr := &TransportError{Err: err, Method: e.request.Method, URL: e.request.URL}
		e.finish(transportErr, nil)
		return nil, transportErr
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()
		release()

		buffered := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
		apiErr := e.newAPIError(buffered)
		e.finish(apiErr, buffered)
		return nil, apiErr
	}

	e.finish(nil, &Response{StatusCode: resp.StatusCode, Header: resp.Header})
	resp.Body = &permitReleasingBody{ReadCloser: resp.Body, release: release}
	return resp, nil
}

// permitReleasingBody returns the concurrency permit when the stream is
// closed. Close is idempotent with respect to the permit.
type permitReleasingBody struct {
	io.ReadCloser
	release func()
}

func (b *permitReleasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}
