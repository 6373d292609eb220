// Package api talks to the remote cycle-tracking service: authentication,
// period and ovulation records, predictions and statistics.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/log"
)

const (
	DefaultBaseURL = "http://127.0.0.1:5001"
	DefaultTimeout = 12 * time.Second

	userAgent = "cycle-cli/1.0"
)

// Credentials supplies the bearer token for authenticated calls and is told
// when the service rejects it. The session manager is the only implementation
// outside tests.
type Credentials interface {
	Token() string
	Invalidate()
}

type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials Credentials
	Logger      *log.Logger
}

// call describes one request. code is the failure category reported for
// every non-authorization failure, fallback the message used when the
// service does not provide one.
type call struct {
	method   string
	path     string
	body     []byte
	auth     bool
	token    string
	code     errors.ErrorCode
	fallback string
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: DefaultTimeout}
	}
	return c.HTTPClient
}

// do executes cl and returns the body of a 2xx response. Authenticated calls
// rejected with 401 or 403 invalidate the credentials before returning a
// session error.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	logger := log.OrDiscard(c.Logger)

	bearer := cl.token
	if cl.auth {
		if c.Credentials != nil {
			bearer = c.Credentials.Token()
		}
		if bearer == "" {
			return nil, errors.NewSessionInvalidError(nil)
		}
	}

	var reqBody io.Reader
	if cl.body != nil {
		reqBody = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL()+cl.path, reqBody)
	if err != nil {
		return nil, errors.Wrap(cl.code, cl.fallback, fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		logger.WithError(err).Debug("request failed", "method", cl.method, "path", cl.path, "request_id", requestID)
		return nil, errors.Wrap(cl.code, retryMessage(cl.fallback), errors.Wrap(errors.ErrCodeNetwork, "execute request", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(cl.code, retryMessage(cl.fallback), errors.Wrap(errors.ErrCodeNetwork, "read response", err))
	}
	logger.Debug("request completed",
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := serviceMessage(body)
	if msg == "" {
		msg = cl.fallback
	}
	failure := errors.New(cl.code, msg).WithStatus(resp.StatusCode)
	if cl.auth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if c.Credentials != nil {
			c.Credentials.Invalidate()
		}
		return nil, errors.NewSessionInvalidError(failure).WithStatus(resp.StatusCode)
	}
	return nil, failure
}

// serviceMessage extracts the {"error": ...} field, falling back to
// {"message": ...}. Non-JSON bodies yield "".
func serviceMessage(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if s := strings.TrimSpace(parsed.Error); s != "" {
		return s
	}
	return strings.TrimSpace(parsed.Message)
}

func retryMessage(fallback string) string {
	return fallback + ". Please try again."
}

// decode unmarshals a successful body into out, reporting failures in cl's category.
func decode(cl call, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(cl.code, retryMessage(cl.fallback), fmt.Errorf("decode %s response: %w", cl.path, err))
	}
	return nil
}
