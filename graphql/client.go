package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/nrfta/admin-go/internal/transport"
)

// Request is a GraphQL request as sent over the wire.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`

	// Header holds extra HTTP headers for this request only.
	Header http.Header `json:"-"`
}

// Response is a GraphQL response. Errors are reported in the response body,
// not as a Go error from Client.Do.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors gqlerror.List   `json:"errors,omitempty"`
}

// Client sends GraphQL requests to a backend.
type Client interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPClient is a Client speaking GraphQL over HTTP POST.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	config   *transport.Config
}

// ClientOption configures an HTTPClient.
type ClientOption func(*transport.Config)

// WithHTTPClient uses c as is; retry options are ignored.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *transport.Config) {
		cfg.HTTPClient = c
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(cfg *transport.Config) {
		cfg.Header.Add(key, value)
	}
}

// WithTimeout sets the timeout of a whole request, retries included.
func WithTimeout(d time.Duration) ClientOption {
	return func(cfg *transport.Config) {
		cfg.Timeout = d
	}
}

// WithRetry configures retries on connection errors, 429 and 5xx responses.
func WithRetry(attempts int, waitMin, waitMax time.Duration) ClientOption {
	return func(cfg *transport.Config) {
		cfg.RetryMax = attempts
		cfg.RetryWaitMin = waitMin
		cfg.RetryWaitMax = waitMax
	}
}

// NewHTTPClient creates a client for the GraphQL endpoint at url.
func NewHTTPClient(url string, opts ...ClientOption) *HTTPClient {
	cfg := transport.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &HTTPClient{
		endpoint: url,
		http:     cfg.Client(),
		config:   cfg,
	}
}

// Do posts req and decodes the response.
//
// Servers commonly answer invalid documents with a 4xx status and a GraphQL
// error body; such responses are returned like any other.
func (c *HTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	c.config.ApplyHeaders(httpReq, req.Header)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		if httpResp.StatusCode >= http.StatusBadRequest {
			return nil, errors.Errorf("unexpected status %d", httpResp.StatusCode)
		}
		return nil, errors.Wrap(err, "decode response")
	}

	if httpResp.StatusCode >= http.StatusBadRequest && len(resp.Errors) == 0 {
		return nil, errors.Errorf("unexpected status %d", httpResp.StatusCode)
	}

	return &resp, nil
}
