// redact/redact.go
package redact

import "net/http"

// Marker replaces sensitive header values before they are surfaced through
// errors or observability events.
const Marker = "[REDACTED]"

// sensitiveHeaders are the request headers that must never leak through error
// values, events, or logs. BoxApi carries shared-link credentials.
var sensitiveHeaders = map[string]bool{
	"Authorization": true,
	"Boxapi":        true,
}

// IsSensitiveHeader reports whether the given header key carries credentials.
func IsSensitiveHeader(key string) bool {
	return sensitiveHeaders[http.CanonicalHeaderKey(key)]
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && IsSensitiveHeader(key) {
		return Marker
	}
	return value
}

// Headers returns a copy of h with every sensitive header value overwritten
// with the redaction marker. The input headers are never mutated.
func Headers(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := make(http.Header, len(h))
	for key, values := range h {
		if IsSensitiveHeader(key) {
			out[key] = []string{Marker}
			continue
		}
		copied := make([]string, len(values))
		copy(copied, values)
		out[key] = copied
	}
	return out
}
