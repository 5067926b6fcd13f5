package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PrincipalHeader is the header the ledger reads the caller from.
const PrincipalHeader = "X-Principal"

// APIError is a non-2xx response from the ledger.
type APIError struct {
	Status  int    // HTTP status
	Code    uint32 // ledger error code; 0 when the response carried none
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ledger error %d (%s): %s", e.Code, e.Kind, e.Message)
	}
	return fmt.Sprintf("ledger returned HTTP %d: %s", e.Status, e.Message)
}

// CodeOf returns the ledger error code carried by err, if any.
func CodeOf(err error) (uint32, bool) {
	var ae *APIError
	if errors.As(err, &ae) && ae.Code != 0 {
		return ae.Code, true
	}
	return 0, false
}

// IsNotFound reports whether err is a 404 from the ledger.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Client is the cardledger SDK entry point.
type Client struct {
	base       string
	httpClient *http.Client
	principal  string
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithPrincipal sets the principal sent with every request.
func WithPrincipal(p string) Option {
	return func(c *Client) error {
		c.principal = strings.TrimSpace(p)
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient = &http.Client{Timeout: d}
		return nil
	}
}

// New creates a Client for the ledger at base (e.g. "http://localhost:8080").
func New(base string, opts ...Option) (*Client, error) {
	if base == "" {
		return nil, errors.New("ledger URL must not be empty")
	}
	c := &Client{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Useful in tests and program init.
func MustNew(base string, opts ...Option) *Client {
	c, err := New(base, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// As returns a copy of c that acts as principal p.
func (c *Client) As(p string) *Client {
	cp := *c
	cp.principal = p
	return &cp
}

// Principal returns the principal requests are sent as.
func (c *Client) Principal() string {
	return c.principal
}

// call sends reqBody (if non-nil) as JSON and decodes the response into
// respBody (if non-nil). Non-2xx responses become *APIError.
func (c *Client) call(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.principal != "" {
		req.Header.Set(PrincipalHeader, c.principal)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if respBody == nil {
		return nil
	}
	if err := json.Unmarshal(raw, respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// lookup is call for reads where 404 means "absent" rather than failure.
func (c *Client) lookup(ctx context.Context, path string, respBody any) (bool, error) {
	err := c.call(ctx, http.MethodGet, path, nil, respBody)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func decodeError(status int, raw []byte) error {
	var body struct {
		Error string `json:"error"`
		Code  uint32 `json:"code"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: status, Code: body.Code, Kind: body.Kind, Message: body.Error}
}
