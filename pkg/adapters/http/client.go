package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/qtree/pkg/domain"
)

// Client calls remote functions served by NewHandler.
// It implements ports.RemoteCaller.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.http.Timeout = d }
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call implements ports.RemoteCaller.
func (c *Client) Call(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
	body, err := json.Marshal(CallRequest{Params: fn.Params, Answers: answers})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rpc/%s/%s", c.baseURL, url.PathEscape(fn.Namespace), url.PathEscape(fn.Method))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnknownFunction, fn, e.Error)
		}
		return nil, fmt.Errorf("remote function %s failed: %s", fn, e.Error)
	}

	var out CallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid response from %s: %w", fn, err)
	}
	return out.Result, nil
}
