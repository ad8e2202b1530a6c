package redirecthandler

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/boxtools/go-box-client/logger"
	"github.com/boxtools/go-box-client/status"
)

// RedirectHandler contains configurations for handling HTTP redirects.
type RedirectHandler struct {
	Logger           logger.Logger
	MaxRedirects     int      // Maximum allowed redirects to prevent infinite loops.
	SensitiveHeaders []string // Headers to be removed on cross-domain redirects.
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(log logger.Logger, maxRedirects int) *RedirectHandler {
	return &RedirectHandler{
		Logger:           log,
		MaxRedirects:     maxRedirects,
		SensitiveHeaders: []string{"Authorization", "BoxApi"},
	}
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// MaxRedirectsError represents an error when the maximum number of redirects is reached.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// checkRedirect implements the redirect handling logic.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	// Non-idempotent methods are never redirected automatically.
	if req.Method == http.MethodPost || req.Method == http.MethodPatch {
		r.Logger.Warn("Redirect attempted on non-idempotent method, not following", zap.String("method", req.Method))
		return http.ErrUseLastResponse
	}

	if len(via) >= r.MaxRedirects {
		r.Logger.Warn("Maximum redirects reached", zap.Int("maxRedirects", r.MaxRedirects))
		return &MaxRedirectsError{MaxRedirects: r.MaxRedirects}
	}

	lastResponse := via[len(via)-1].Response
	if lastResponse == nil || !status.IsRedirectStatusCode(lastResponse.StatusCode) {
		return http.ErrUseLastResponse
	}

	// Strip credentials when the redirect crosses hosts.
	if req.URL.Host != via[0].URL.Host {
		for _, header := range r.SensitiveHeaders {
			req.Header.Del(header)
		}
	}

	// 303 See Other demotes the request to a bodyless GET.
	if lastResponse.StatusCode == http.StatusSeeOther {
		req.Method = http.MethodGet
		req.Body = nil
		req.GetBody = nil
		req.ContentLength = 0
		req.Header.Del("Content-Type")
	}

	r.Logger.Debug("Redirecting request",
		zap.String("url", req.URL.String()),
		zap.Int("redirectCount", len(via)),
	)
	return nil
}

// SetupRedirectHandler configures the HTTP client for redirect handling based on the client configuration.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, log logger.Logger) error {
	if !followRedirects {
		return nil
	}
	if maxRedirects < 1 {
		return log.Error("Invalid maxRedirects value", zap.Int("maxRedirects", maxRedirects))
	}

	redirectHandler := NewRedirectHandler(log, maxRedirects)
	redirectHandler.WithRedirectHandling(client)
	log.Debug("Redirect handling enabled", zap.Int("MaxRedirects", maxRedirects))
	return nil
}
