// Package gateway is the typed HTTP client for the pennywise API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/uuid"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token returns f().
func (f TokenFunc) Token() string { return f() }

// Client communicates with the pennywise API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(context.Context)
	log            *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithUnauthorizedHandler registers fn to run whenever the API answers 401.
func WithUnauthorizedHandler(fn func(context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the client logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client, tokens TokenSource, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	public bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("marshaling %s %s: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewRef())
	if !cl.public {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.RequestError{Method: cl.method, Path: cl.path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := decodeError(cl.method, cl.path, resp)
		c.log.Debugw("api error", "method", cl.method, "path", cl.path, "status", resp.StatusCode, "code", reqErr.Code)
		if resp.StatusCode == http.StatusUnauthorized && !cl.public && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return reqErr
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", cl.method, cl.path, err)
	}
	return nil
}

func decodeError(method, path string, resp *http.Response) *apperrors.RequestError {
	reqErr := &apperrors.RequestError{Method: method, Path: path, StatusCode: resp.StatusCode}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		reqErr.Code = body.Error.Code
		reqErr.Message = body.Error.Message
	}
	return reqErr
}
