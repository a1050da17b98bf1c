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

	"github.com/rs/zerolog"

	"github.com/corebank-dev/corebank/internal/cli/session"
)

const (
	// DefaultBaseURL is used when no API address is configured.
	DefaultBaseURL = "http://localhost:8080/api"

	// LoginPath is where an invalidated session is sent to sign in again.
	LoginPath = "/login"

	bearerPrefix = "Bearer "
)

// InvalidationHandler is notified after the backend rejected the session
// credential and the local session has been purged. It may be called
// concurrently and more than once, so implementations must be idempotent.
type InvalidationHandler interface {
	OnAuthFailure(ctx context.Context)
}

// InvalidationFunc adapts a function to InvalidationHandler.
type InvalidationFunc func(ctx context.Context)

func (f InvalidationFunc) OnAuthFailure(ctx context.Context) { f(ctx) }

// NopHandler ignores auth failures beyond the session purge.
var NopHandler InvalidationHandler = InvalidationFunc(func(context.Context) {})

// Options configures a Client.
type Options struct {
	// BaseURL prefixes every request path. Empty means DefaultBaseURL.
	BaseURL string
	// Header is merged into every request before per-request headers.
	// Nil means DefaultHeader().
	Header http.Header
	// HTTPClient performs the requests. Nil means a client with no timeout.
	HTTPClient *http.Client
	// Logger receives one debug line per request. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultHeader returns the headers sent with every request.
func DefaultHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	// Body is sent as-is when it is []byte or io.Reader, otherwise JSON-encoded.
	Body    any
	Header  http.Header
	Timeout time.Duration
}

// Response is a successful (2xx) API response, unmodified.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// Client sends requests to the CoreBank API, attaching the stored bearer
// token and purging the session when the API answers 401.
type Client struct {
	baseURL    string
	header     http.Header
	httpClient *http.Client
	store      session.Store
	handler    InvalidationHandler
	logger     zerolog.Logger
}

// New creates a new API client. A nil handler behaves like NopHandler.
func New(opts Options, store session.Store, handler InvalidationHandler) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	header := opts.Header
	if header == nil {
		header = DefaultHeader()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	if handler == nil {
		handler = NopHandler
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		header:     header.Clone(),
		httpClient: httpClient,
		store:      store,
		handler:    handler,
		logger:     logger,
	}
}

// BaseURL returns the address requests are sent against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the store the client reads its credential from.
func (c *Client) Session() session.Store {
	return c.store
}

// Do sends the request once. Non-2xx responses are returned as *APIError.
// A 401 additionally purges the session and notifies the handler before
// the error is returned.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", req.Method).Str("path", r.Path).Msg("API request failed")
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Invalidate on the status line alone; the body may be truncated
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidate(ctx)
	}

	body, readErr := io.ReadAll(resp.Body)

	c.logger.Debug().
		Err(readErr).
		Str("method", req.Method).
		Str("path", r.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp, body)
		if readErr != nil {
			return nil, fmt.Errorf("%w (failed to read response: %w)", apiErr, readErr)
		}
		return nil, apiErr
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, readErr)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(r.Path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range c.header {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range r.Header {
		req.Header[k] = append([]string(nil), vs...)
	}

	token, err := session.Token(c.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", bearerPrefix+token)
	} else {
		req.Header.Del("Authorization")
	}

	return req, nil
}

// invalidate purges the session and notifies the handler. Purge errors are
// logged; the caller still receives the 401.
func (c *Client) invalidate(ctx context.Context) {
	if err := session.Purge(c.store); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear session after 401")
	}
	c.handler.OnAuthFailure(ctx)
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
