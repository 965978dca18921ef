// ABOUTME: HTTP client for the quill blog API
// ABOUTME: Normalizes transport and API failures into a single Result envelope

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is used when no API address is configured
const DefaultBaseURL = "http://localhost:8080/api"

// genericFailure is reported when a non-2xx response carries no message
const genericFailure = "request failed"

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty token means no Authorization header is sent.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options controls per-request behavior
type Options struct {
	// SkipAuth suppresses the Authorization header even when a token is stored
	SkipAuth bool
	// Token is sent instead of the stored token when set
	Token string
}

// Result is the normalized envelope returned by every request.
// Success implies Error is empty; failure implies Value is nil.
type Result[T any] struct {
	Success bool
	Value   *T
	Error   string

	// Transport is set when no usable response was received
	Transport bool
}

// Ok wraps a value in a successful Result
func Ok[T any](v *T) Result[T] {
	return Result[T]{Success: true, Value: v}
}

// Failure builds a failed Result carrying msg
func Failure[T any](msg string) Result[T] {
	return Result[T]{Success: false, Error: msg}
}

// TransportFailure builds a failed Result for a request that never got a
// usable response
func TransportFailure[T any](msg string) Result[T] {
	return Result[T]{Success: false, Error: msg, Transport: true}
}

// Err returns the failure as an error, or nil on success
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}

// ErrorResponse is the error body shape returned by the backend
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Client is the API client for the blog backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	requestID  func() string
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets where bearer tokens are read from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		requestID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the address requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request to endpoint and decodes a JSON response into T.
// It never returns an error: transport and API failures are reported through
// the Result envelope.
func Do[T any](ctx context.Context, c *Client, method, endpoint string, body any, opts Options) Result[T] {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return TransportFailure[T](fmt.Sprintf("failed to marshal request: %v", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return TransportFailure[T](fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	reqID := c.requestID()
	req.Header.Set("X-Request-ID", reqID)

	switch {
	case opts.SkipAuth:
	case opts.Token != "":
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	default:
		c.authorize(ctx, req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := c.handleRequestError(ctx, err)
		c.logger.Debug("request failed",
			"request_id", reqID, "method", method, "path", endpoint, "error", msg)
		return TransportFailure[T](msg)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		"request_id", reqID,
		"method", method,
		"path", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Failure[T](c.handleErrorResponse(resp))
	}

	if !isJSON(resp) {
		return Result[T]{Success: true}
	}

	var value T
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			return Result[T]{Success: true}
		}
		return TransportFailure[T](fmt.Sprintf("invalid response from backend: %v", err))
	}
	return Ok(&value)
}

// authorize attaches the stored bearer token, when there is one
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("cannot read stored token, sending unauthenticated", "error", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.Canceled) {
		return "request canceled"
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "request timed out"
	}
	return fmt.Sprintf("cannot connect to backend at %s: %v", c.baseURL, err)
}

// handleErrorResponse extracts the server message from a non-2xx response
func (c *Client) handleErrorResponse(resp *http.Response) string {
	if !isJSON(resp) {
		return genericFailure
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return genericFailure
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	return genericFailure
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}
