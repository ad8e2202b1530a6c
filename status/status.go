// status.go
// This package provides utility functions for classifying HTTP responses from
// the API into temporary (retry-eligible) and permanent failures.
package status

import (
	"net/http"
)

// retryableStatusCodes are non-5xx statuses that still signal a transient
// condition worth retrying.
var retryableStatusCodes = map[int]bool{
	http.StatusRequestTimeout:  true,
	http.StatusTooManyRequests: true,
}

// IsSuccessStatusCode checks if the provided HTTP status code indicates success.
func IsSuccessStatusCode(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsTemporaryStatusCode checks if the provided HTTP status code indicates a
// transient failure that may succeed on retry. Server errors in [500,599] are
// temporary with the exception of 507 Insufficient Storage, which signals a
// permanent quota failure. 408 Request Timeout and 429 Too Many Requests are
// temporary as well.
func IsTemporaryStatusCode(statusCode int) bool {
	if statusCode == http.StatusInsufficientStorage {
		return false
	}
	if statusCode >= 500 && statusCode <= 599 {
		return true
	}
	return retryableStatusCodes[statusCode]
}

// IsRetryableStatusCode checks if the provided HTTP status code is in the
// configured retryable set outside the 5xx range.
func IsRetryableStatusCode(statusCode int) bool {
	return retryableStatusCodes[statusCode]
}

// IsPermanentFailureStatusCode checks if the provided status code indicates a
// failure that must not be retried.
func IsPermanentFailureStatusCode(statusCode int) bool {
	return statusCode >= 400 && !IsTemporaryStatusCode(statusCode)
}

// IsRedirectStatusCode checks if the provided HTTP status code is one of the redirect codes.
// Redirect status codes instruct the client to make a new request to a different URI, as
// defined in the response's Location header.
func IsRedirectStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsPermanentRedirect checks if the provided HTTP status code is one of the permanent redirect codes.
func IsPermanentRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
