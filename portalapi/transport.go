package portalapi

import (
	"net/http"

	"golang.org/x/oauth2"
)

// bearerTransport attaches the current access token, read from the source on
// every request. Requests go out without a header when there is no token.
type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.source == nil {
		return t.base.RoundTrip(req)
	}

	tok, err := t.source.Token()
	if err != nil || tok == nil || tok.AccessToken == "" {
		return t.base.RoundTrip(req)
	}

	r2 := req.Clone(req.Context())
	tok.SetAuthHeader(r2)
	return t.base.RoundTrip(r2)
}
