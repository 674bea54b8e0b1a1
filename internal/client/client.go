// Package client holds the HTTP clients for the user, comment and like
// services.
package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"go.uber.org/zap"
)

// ErrAuthRequired is returned before any request is made when a client that
// needs a caller token is given none.
var ErrAuthRequired = stderrors.New("caller token is required")

// UpstreamError is a non-success response or a connectivity failure.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s service unavailable: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s service returned %d: %s", e.Service, e.StatusCode, e.Message)
}

// HTTPStatusCode returns the upstream status, 0 for connectivity failures.
func (e *UpstreamError) HTTPStatusCode() int { return e.StatusCode }

// TimeoutError means the upstream did not answer within the client deadline.
type TimeoutError struct {
	Service string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s service did not respond within %s", e.Service, e.Timeout)
}

// Options configures a collaborator client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type base struct {
	service    string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func newBase(service string, opts Options) base {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return base{
		service:    service,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// getJSON performs one GET against path and decodes the body into out.
// The call is bounded by the client's own deadline.
func (b base) getJSON(ctx context.Context, path, token string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return &UpstreamError{Service: b.service, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			util.Logger.Warn("upstream timed out",
				zap.String("service", b.service),
				zap.String("path", path),
				zap.Duration("timeout", b.timeout))
			return &TimeoutError{Service: b.service, Timeout: b.timeout}
		}
		util.Logger.Warn("upstream request failed",
			zap.String("service", b.service),
			zap.String("path", path),
			zap.Error(err))
		return &UpstreamError{Service: b.service, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		if isTimeout(ctx, err) {
			return &TimeoutError{Service: b.service, Timeout: b.timeout}
		}
		return &UpstreamError{Service: b.service, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	util.Logger.Debug("upstream responded",
		zap.String("service", b.service),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{
			Service:    b.service,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body, resp.Status),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{
			Service:    b.service,
			StatusCode: resp.StatusCode,
			Message:    "invalid response body: " + err.Error(),
		}
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// upstreamMessage extracts {"error": ...} or {"message": ...} from an error
// body and falls back to the status line.
func upstreamMessage(body []byte, status string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return status
}

func escape(id string) string { return url.PathEscape(id) }
