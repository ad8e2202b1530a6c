// response/error.go
// This package provides utility functions and structures for handling and categorizing HTTP error responses.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// APIError represents an api error response. It carries enough context for a
// caller to distinguish "give up" from "my credentials are dead" from "try
// again later": the status code, the parsed message, a snapshot of the
// triggering request headers (sensitive values redacted by the publisher),
// and whether the retry budget was exhausted.
type APIError struct {
	StatusCode  int      `json:"status_code"` // HTTP status code
	Method      string   `json:"method"`      // HTTP method used for the request
	URL         string   `json:"url"`         // The URL of the HTTP request
	Code        string   `json:"code,omitempty"`
	Message     string   `json:"message"`           // Summary of the error
	Details     []string `json:"details,omitempty"` // Detailed error messages, if any
	RawResponse string   `json:"raw_response"`      // Raw response body for debugging

	// RequestHeaders is a redacted snapshot of the outgoing request headers.
	RequestHeaders http.Header `json:"request_headers,omitempty"`

	// ResponseHeaders is the header set of the failed response. Token refresh
	// reads the server Date from here to reason about clock skew.
	ResponseHeaders http.Header `json:"-"`

	// MaxRetriesExceeded is set once the retry budget for the request has
	// been exhausted.
	MaxRetriesExceeded bool `json:"max_retries_exceeded,omitempty"`
}

// Error returns a string representation of the APIError, making it compatible with the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.MaxRetriesExceeded {
		return fmt.Sprintf("API error: status=%d message=%q (max retries exceeded)", e.StatusCode, msg)
	}
	return fmt.Sprintf("API error: status=%d message=%q", e.StatusCode, msg)
}

// NewAPIError builds an APIError from a response, interpreting the body based
// on its content type. JSON is the common case for this API; XML, HTML and
// plain text show up from intermediaries and error pages.
func NewAPIError(statusCode int, method, url string, header http.Header, body []byte) *APIError {
	apiError := &APIError{
		StatusCode:      statusCode,
		Method:          method,
		URL:             url,
		Message:         http.StatusText(statusCode),
		ResponseHeaders: header,
	}

	if len(body) == 0 {
		return apiError
	}

	mimeType := "application/json"
	if header != nil {
		if parsed, _, err := mime.ParseMediaType(header.Get("Content-Type")); err == nil && parsed != "" {
			mimeType = parsed
		}
	}

	switch mimeType {
	case "application/json":
		parseJSONResponse(body, apiError)
	case "application/xml", "text/xml":
		parseXMLResponse(body, apiError)
	case "text/html":
		parseHTMLResponse(body, apiError)
	case "text/plain":
		parseTextResponse(body, apiError)
	default:
		apiError.RawResponse = string(body)
	}

	return apiError
}

// jsonErrorBody matches the error schema of the API's JSON error responses.
type jsonErrorBody struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ContextInfo      struct {
		Errors []struct {
			Reason  string `json:"reason"`
			Name    string `json:"name"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"context_info"`
}

// parseJSONResponse attempts to parse the JSON error response and update the APIError structure.
func parseJSONResponse(bodyBytes []byte, apiError *APIError) {
	apiError.RawResponse = string(bodyBytes)

	var body jsonErrorBody
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return
	}

	switch {
	case body.Message != "":
		apiError.Message = body.Message
	case body.ErrorDescription != "":
		apiError.Message = body.ErrorDescription
	case body.Error != "":
		apiError.Message = body.Error
	}

	if body.Code != "" {
		apiError.Code = body.Code
	} else if body.Error != "" {
		apiError.Code = body.Error
	}

	for _, detail := range body.ContextInfo.Errors {
		if detail.Message != "" {
			apiError.Details = append(apiError.Details, detail.Message)
		} else if detail.Reason != "" {
			apiError.Details = append(apiError.Details, detail.Reason)
		}
	}
}

// parseXMLResponse dynamically parses XML error responses and accumulates potential error messages.
func parseXMLResponse(bodyBytes []byte, apiError *APIError) {
	apiError.RawResponse = string(bodyBytes)

	doc, err := xmlquery.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	}
}

// parseTextResponse updates the APIError structure based on a plain text error response.
func parseTextResponse(bodyBytes []byte, apiError *APIError) {
	bodyText := string(bodyBytes)
	apiError.RawResponse = bodyText
	apiError.Message = bodyText
}

// parseHTMLResponse extracts meaningful information from an HTML error response,
// concatenating all text within <p> tags.
func parseHTMLResponse(bodyBytes []byte, apiError *APIError) {
	apiError.RawResponse = string(bodyBytes)

	doc, err := html.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			var pContent strings.Builder
			var traverseChildren func(*html.Node)
			traverseChildren = func(c *html.Node) {
				if c.Type == html.TextNode {
					pContent.WriteString(strings.TrimSpace(c.Data) + " ")
				}
				for child := c.FirstChild; child != nil; child = child.NextSibling {
					traverseChildren(child)
				}
			}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				traverseChildren(child)
			}
			if finalContent := strings.TrimSpace(pContent.String()); finalContent != "" {
				messages = append(messages, finalContent)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	}
}
