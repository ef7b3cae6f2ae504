// Package portalapi is the typed client of the admissions REST backend.
//
// Every failed call returns an *Error whose message is already normalized
// and localized for display.
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Client talks to the admissions backend on behalf of one credential holder.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	messages *Messages
}

// ClientOptions configures client construction.
type ClientOptions struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Messages   *Messages
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the base HTTP client. Its transport is wrapped with
// the bearer transport.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.Timeout = timeout
	}
}

// WithMessages shares a message catalogue between clients.
func WithMessages(m *Messages) ClientOption {
	return func(opts *ClientOptions) {
		opts.Messages = m
	}
}

// NewClient creates a client for the API rooted at baseURL. Tokens are read
// from tokens on every request; a nil source sends anonymous requests.
func NewClient(baseURL string, tokens oauth2.TokenSource, optFns ...ClientOption) (*Client, error) {
	opts := ClientOptions{Timeout: 15 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[portalapi NewClient] invalid base URL %q: %w", baseURL, err)
	}

	var base http.RoundTripper = http.DefaultTransport
	if opts.HTTPClient != nil && opts.HTTPClient.Transport != nil {
		base = opts.HTTPClient.Transport
	}
	if opts.Messages == nil {
		opts.Messages = NewMessages()
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Transport: &bearerTransport{source: tokens, base: base},
			Timeout:   opts.Timeout,
		},
		messages: opts.Messages,
	}, nil
}

// Messages returns the catalogue used to localize errors.
func (c *Client) Messages() *Messages {
	return c.messages
}

func (c *Client) endpoint(path string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.baseURL.ResolveReference(ref).String()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.sendJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &Error{Code: CodeServerError, Message: c.messages.Default(), Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return &Error{Code: CodeServerError, Message: c.messages.Default(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("Backend request failed")
		return c.messages.Transport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.messages.Transport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.messages.Normalize(resp.StatusCode, data)
		log.Debug().Int("status", resp.StatusCode).Str("code", string(apiErr.Code)).
			Str("url", req.URL.Path).Msg(apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Status: resp.StatusCode, Code: CodeServerError, Message: c.messages.Default(),
			Err: fmt.Errorf("[portalapi] decode %s: %w", req.URL.Path, err)}
	}
	return nil
}
