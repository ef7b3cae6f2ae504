package portalapi

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.sendJSON(ctx, http.MethodPost, "auth/login/", nil, LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an applicant account. The backend sends a verification email.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "auth/register/", nil, req, nil)
}

// VerifyEmail confirms the address behind a verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.getJSON(ctx, "auth/verify/", url.Values{"token": {token}}, nil)
}
