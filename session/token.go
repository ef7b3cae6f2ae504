package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ExpiryOf returns the exp claim of a JWT access token, or the zero time when
// the token carries none. The signature is not verified; the backend stays
// the authority on validity.
func ExpiryOf(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

type storeTokenSource struct {
	store TokenStore
}

// TokenSource exposes the token held by store. The store is consulted on
// every call so a sign-out takes effect on the next request.
func TokenSource(store TokenStore) oauth2.TokenSource {
	return &storeTokenSource{store: store}
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	creds, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
		Expiry:      creds.ExpiresAt,
	}, nil
}
