// httpclient/methods.go
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boxtools/go-box-client/response"
)

// DoRequest executes an authenticated API call. It resolves the endpoint
// against the API root, obtains a bearer token from the session, and decodes
// a successful JSON response into out when out is non-nil. A 401 response is
// routed through the session's expired-token handling before being returned.
func (c *Client) DoRequest(ctx context.Context, opts RequestOptions, out interface{}) (*Response, error) {
	opts.URL = c.apiURL(opts.URL)

	token, err := c.session.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	header := c.authHeaders(token)
	for key, values := range opts.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	opts.Header = header

	resp, err := c.Requests.MakeRequest(ctx, opts)
	if err != nil {
		return nil, c.handleRequestError(err)
	}

	if out != nil {
		if err := response.ParseSuccessResponse(resp.Body, out); err != nil {
			return resp, fmt.Errorf("failed to decode %s %s response: %w", opts.Method, opts.URL, err)
		}
	}
	return resp, nil
}

// handleRequestError gives the session a chance to invalidate persisted state
// when the API rejects its credentials. The original error is always what the
// caller sees unless the invalidation itself fails.
func (c *Client) handleRequestError(err error) error {
	var apiErr *response.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return err
	}

	handler, ok := c.session.(ExpiredTokensHandler)
	if !ok {
		return err
	}
	if handleErr := handler.HandleExpiredTokensError(err); handleErr != nil {
		return handleErr
	}
	return err
}

// Get issues an authenticated GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, out interface{}) (*Response, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, URL: endpoint, Query: query}, out)
}

// Post issues an authenticated POST carrying body as JSON.
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}, out interface{}) (*Response, error) {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, out)
}

// Put issues an authenticated PUT carrying body as JSON.
func (c *Client) Put(ctx context.Context, endpoint string, body interface{}, out interface{}) (*Response, error) {
	return c.doJSON(ctx, http.MethodPut, endpoint, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodDelete, URL: endpoint}, nil)
}

// Options issues an authenticated OPTIONS, used by preflight endpoints.
func (c *Client) Options(ctx context.Context, endpoint string, body interface{}, out interface{}) (*Response, error) {
	return c.doJSON(ctx, http.MethodOptions, endpoint, body, out)
}

// PostMultipart issues an authenticated multipart/form-data upload against the
// upload root. Uploads are never retried.
func (c *Client) PostMultipart(ctx context.Context, endpoint string, fields []MultipartField, out interface{}) (*Response, error) {
	uploadURL := endpoint
	if !isAbsoluteURL(endpoint) {
		uploadURL = c.config.UploadRootURL + "/" + trimLeadingSlash(endpoint)
	}
	return c.DoRequest(ctx, RequestOptions{Method: http.MethodPost, URL: uploadURL, Multipart: fields}, out)
}

// Download issues an authenticated streaming GET. The caller owns closing the
// returned body.
func (c *Client) Download(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	token, err := c.session.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.Requests.MakeStreamingRequest(ctx, RequestOptions{
		Method: http.MethodGet,
		URL:    c.apiURL(endpoint),
		Header: c.authHeaders(token),
		Query:  query,
	})
	if err != nil {
		return nil, c.handleRequestError(err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body interface{}, out interface{}) (*Response, error) {
	opts := RequestOptions{Method: method, URL: endpoint}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s request body: %w", method, endpoint, err)
		}
		opts.Body = encoded
		opts.Header = http.Header{"Content-Type": []string{"application/json"}}
	}
	return c.DoRequest(ctx, opts, out)
}

func isAbsoluteURL(endpoint string) bool {
	u, err := url.Parse(endpoint)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func trimLeadingSlash(endpoint string) string {
	if len(endpoint) > 0 && endpoint[0] == '/' {
		return endpoint[1:]
	}
	return endpoint
}
