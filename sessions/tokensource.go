// sessions/tokensource.go
package sessions

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/boxtools/go-box-client/tokenmanager"
)

// tokenInfoSession is satisfied by sessions that expose their cached token
// snapshot alongside the access-token surface.
type tokenInfoSession interface {
	Session
	CurrentTokenInfo() *tokenmanager.TokenInfo
}

type tokenSource struct {
	ctx     context.Context
	session Session
}

// TokenSource adapts a session to the standard oauth2.TokenSource interface
// so the client's credentials can feed libraries built on the oauth2 package.
// The context bounds every token acquisition the source performs.
func TokenSource(ctx context.Context, session Session) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, session: session}
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.session.GetAccessToken(s.ctx)
	if err != nil {
		return nil, err
	}

	if provider, ok := s.session.(tokenInfoSession); ok {
		if info := provider.CurrentTokenInfo(); info != nil && info.AccessToken == accessToken {
			return info.OAuth2Token(), nil
		}
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "bearer"}, nil
}
