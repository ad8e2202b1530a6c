// proxy.go

package proxy

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/boxtools/go-box-client/logger"
)

// InitializeProxy initializes the proxy configuration on the given HTTP
// client based on the provided options. It supports proxy authentication
// using username/password.
func InitializeProxy(httpClient *http.Client, proxyURL, proxyUsername, proxyPassword string, log logger.Logger) error {
	if proxyURL == "" {
		return nil // No proxy configuration provided, nothing to do
	}

	parsedProxyURL, err := url.Parse(proxyURL)
	if err != nil {
		log.Warn("Failed to parse proxy URL", zap.Error(err))
		return err
	}

	var proxyAuth *url.Userinfo
	if proxyUsername != "" && proxyPassword != "" {
		proxyAuth = url.UserPassword(proxyUsername, proxyPassword)
	}

	if proxyAuth != nil {
		parsedProxyURL.User = proxyAuth
		httpClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(parsedProxyURL),
			ProxyConnectHeader: http.Header{
				"Proxy-Authorization": []string{proxyAuth.String()},
			},
		}
	} else {
		httpClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(parsedProxyURL),
		}
	}

	log.Info("Proxy configured", zap.String("ProxyURL", parsedProxyURL.Redacted()))
	return nil
}
