// httpclient/retry.go
package httpclient

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// maxBackoff caps the exponential backoff so the delay between attempts
// never grows without bound.
const maxBackoff = 60 * time.Second

// CalculateBackoff returns the wait before retry attempt number attempt
// (1-based): base * 2^(attempt-1) plus a uniformly random jitter in
// [0, base), capped at maxBackoff.
func CalculateBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = DefaultRetryInterval
	}
	if attempt < 1 {
		attempt = 1
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}

	delay += time.Duration(rand.Int63n(int64(base)))
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

// ParseRetryAfter reads the Retry-After header from a response. The value may
// be a delay in seconds or an HTTP date. The returned bool reports whether a
// usable value was present.
func ParseRetryAfter(header http.Header) (time.Duration, bool) {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	if at, err := http.ParseTime(raw); err == nil {
		wait := time.Until(at)
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}

	return 0, false
}
