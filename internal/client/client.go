// Package client is the remote data service: a typed HTTP client for the
// shoplist backend.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL string
	// APIKey is sent as X-API-Key when set.
	APIKey string
	// Username and Password are sent as Basic credentials when set.
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks to the backend REST API.
type Client struct {
	http      *http.Client
	transport *AuthTransport
	baseURL   *url.URL
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Client for cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &AuthTransport{
		APIKey:   cfg.APIKey,
		Username: cfg.Username,
		Password: cfg.Password,
		Base:     http.DefaultTransport,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport: transport,
		baseURL:   base,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// AuthTransport adds credentials and content negotiation headers.
type AuthTransport struct {
	APIKey   string
	Username string
	Password string
	Base     http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br")
	t.setCredentials(req.Header)
	return t.Base.RoundTrip(req)
}

func (t *AuthTransport) setCredentials(h http.Header) {
	if t.APIKey != "" {
		h.Set("X-API-Key", t.APIKey)
	}
	if t.Username != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(t.Username + ":" + t.Password))
		h.Set("Authorization", "Basic "+creds)
	}
}

// request describes one API call.
type request struct {
	message string // shown to users on failure
	method  string
	path    string
	query   url.Values
	body    any
	ifMatch string
}

// do performs req and decodes a successful response body into out.
// It returns the response headers so callers can read the ETag.
func (c *Client) do(ctx context.Context, req request, out any) (http.Header, error) {
	op := req.method + " " + req.path
	fail := func(status int, err error) *TransportError {
		return &TransportError{Op: op, StatusCode: status, Message: req.message, Err: err}
	}

	u := *c.baseURL
	u.Path += req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fail(0, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fail(0, err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.ifMatch != "" {
		httpReq.Header.Set("If-Match", req.ifMatch)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return nil, fail(0, err)
	}
	if resp.Header.Get("Content-Encoding") == "br" {
		resp.Body = &readCloserWrapper{Reader: brotli.NewReader(resp.Body), Closer: resp.Body}
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, fail(resp.StatusCode, statusDetail(resp))
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fail(resp.StatusCode, fmt.Errorf("decode response: %w", err))
		}
	}

	return resp.Header, nil
}

// statusDetail describes a non-2xx response, preferring the backend's error message.
func statusDetail(resp *http.Response) error {
	var apiErr model.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	detail := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		detail = apiErr.Message
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return errors.New(detail)
}

type readCloserWrapper struct {
	io.Reader
	io.Closer
}

func (r *readCloserWrapper) Read(p []byte) (n int, err error) {
	return r.Reader.Read(p)
}

func (r *readCloserWrapper) Close() error {
	return r.Closer.Close()
}
