package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed response is kept in HTTPError
const maxErrorBody = 2048

type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	return &Connector{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: NewClient(options...),
		logger:     config.Logger,
	}
}

// HTTPClient exposes the configured client for SDKs that accept one
func (c *Connector) HTTPClient() *http.Client {
	return c.httpClient
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	overrideURL string
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// DoRequest sends reqBody as JSON and decodes a JSON response into respBody
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	var payload []byte
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = jsonData
	}

	return c.send(ctx, method, endpoint, "application/json", payload, respBody, opts...)
}

// DoFormRequest sends form as application/x-www-form-urlencoded and decodes a JSON response
func (c *Connector) DoFormRequest(ctx context.Context, method, endpoint string, form url.Values, respBody any, opts ...RequestOpt) error {
	var payload []byte
	if form != nil {
		payload = []byte(form.Encode())
	}

	return c.send(ctx, method, endpoint, "application/x-www-form-urlencoded", payload, respBody, opts...)
}

func (c *Connector) send(ctx context.Context, method, endpoint, contentType string, payload []byte, respBody any, opts ...RequestOpt) error {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	target := c.baseURL + endpoint
	if cfg.overrideURL != "" {
		target = cfg.overrideURL
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
		ctx = context.WithValue(ctx, payloadContextKey{}, payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(bodyBytes)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if respBody != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is worth another attempt
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= 500
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable is the retry predicate shared by the integrations:
// network failures and throttling/server statuses are retried, everything else is final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}

	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsRetryableCreate is the predicate for requests that create something remotely.
// Only failures where the server cannot have acted are retried: throttling and
// connections that were never established.
func IsRetryableCreate(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
