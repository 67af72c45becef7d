package auth

import (
	"golang.org/x/oauth2"
)

// sessionTokenSource serves the stored session token as an OAuth2 bearer token.
type sessionTokenSource struct {
	sessions *SessionStore
}

// NewTokenSource returns an oauth2.TokenSource backed by the stored session.
// The token is cached until it expires, after which the session is read again.
func NewTokenSource(sessions *SessionStore) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &sessionTokenSource{sessions: sessions})
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	session, err := ts.sessions.Load()
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: session.Token,
		TokenType:   "Bearer",
		Expiry:      session.ExpiresAt,
	}, nil
}
