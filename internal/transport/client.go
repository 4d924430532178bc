// Package transport provides the HTTP plumbing shared by all CRM calls:
// authentication, JSON encoding, body capture, and response observation.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/LiamTF/hubsync/pkg/errors"
)

// Response is a fully-read remote response. The body is captured so it
// can be handed to both the caller (for status contracts and decoding)
// and the observer (for diagnostic echo).
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into target.
func (r *Response) Decode(target any) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return errors.WrapTransport("decode response", "", err)
	}
	return nil
}

// Client performs HTTP requests with authentication and observation
// applied. It holds no per-request state; every call is independent.
type Client struct {
	http     *http.Client
	auth     Authenticator
	observer Observer
}

// New creates a new transport client. The underlying http.Client has no
// global timeout; callers bound individual calls through their context.
func New(auth Authenticator, observer Observer) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Client{
		http:     &http.Client{},
		auth:     auth,
		observer: observer,
	}
}

// SetHTTPClient replaces the underlying http.Client. Used by tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.http = hc
	}
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, operation, url string, query map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapTransport(operation, url, err)
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	return c.do(operation, req)
}

// PostJSON performs a POST request with a JSON-encoded payload.
func (c *Client) PostJSON(ctx context.Context, operation, url string, payload any) (*Response, error) {
	return c.sendJSON(ctx, operation, http.MethodPost, url, payload)
}

// PatchJSON performs a PATCH request with a JSON-encoded payload.
func (c *Client) PatchJSON(ctx context.Context, operation, url string, payload any) (*Response, error) {
	return c.sendJSON(ctx, operation, http.MethodPatch, url, payload)
}

func (c *Client) sendJSON(ctx context.Context, operation, method, url string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapTransport(operation, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapTransport(operation, url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(operation, req)
}

// do applies authentication, executes the request, reads the full body,
// and reports the outcome to the observer. Transport faults (timeouts,
// connection failures) are returned wrapped; status handling is the
// caller's responsibility because success codes differ per operation.
func (c *Client) do(operation string, req *http.Request) (*Response, error) {
	c.auth.Apply(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapTransport(operation, req.URL.String(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readAll(resp)
	if err != nil {
		return nil, errors.WrapTransport(operation, req.URL.String(), err)
	}

	c.observer.Observe(operation, resp.StatusCode, body)

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func readAll(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
