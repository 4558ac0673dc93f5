// Package api implements the authenticated request pipeline: JSON transport
// against the backend API with bearer token attachment, a single
// refresh-and-retry on 401, and total error classification.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/campus-eats/appkit/internal/token"
	apperrors "github.com/campus-eats/appkit/pkg/errors"
	"github.com/campus-eats/appkit/pkg/httpclient"
)

const refreshPath = "/api/auth/refresh"

// Client executes JSON requests against the backend API.
type Client struct {
	baseURL string
	http    httpclient.Doer
	tokens  *token.Store
	logger  *slog.Logger

	// refreshMu collapses concurrent refresh cycles into one in-flight call.
	refreshMu sync.Mutex
}

// NewClient creates a request pipeline bound to a base URL and token store.
func NewClient(baseURL string, doer httpclient.Doer, tokens *token.Store, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		tokens:  tokens,
		logger:  logger,
	}
}

// Result is a successful (2xx) response.
type Result struct {
	Status    int
	Body      []byte
	NoContent bool
}

// Decode unmarshals the response body into v. It is a no-op for empty bodies.
func (r *Result) Decode(v any) error {
	if r.NoContent {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type requestOptions struct {
	skipAuth bool
}

// Option configures a single request.
type Option func(*requestOptions)

// SkipAuth sends the request without a bearer token and without the 401
// refresh-and-retry behavior. Login, signup, and the refresh call itself
// use it.
func SkipAuth() Option {
	return func(o *requestOptions) { o.skipAuth = true }
}

// Get issues an authorized GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...Option) (*Result, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues an authorized POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...Option) (*Result, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues an authorized PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...Option) (*Result, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Delete issues an authorized DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...Option) (*Result, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do executes one API request. For authorized requests it attaches the stored
// access token, refreshing proactively when none is stored, and retries
// exactly once after a refresh when the server answers 401. Every non-2xx
// outcome is classified into an *apperrors.AppError.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...Option) (*Result, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	access := ""
	if !ro.skipAuth {
		var ok bool
		var err error
		access, ok, err = c.tokens.Access(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			// No access token yet: try to mint one before the first attempt.
			// When that fails the request never reaches the network.
			if err := c.refresh(ctx, ""); err != nil {
				return nil, &apperrors.AppError{
					Code:    apperrors.CodeUnauthorized,
					Message: apperrors.UserMessage(apperrors.CodeUnauthorized, ""),
					Status:  http.StatusUnauthorized,
					Err:     err,
				}
			}
			access, _, err = c.tokens.Access(ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	resp, err := c.execute(ctx, method, path, payload, access)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !ro.skipAuth {
		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			raw = nil
		}

		if err := c.refresh(ctx, access); err != nil {
			// Refresh failed and the tokens are cleared. The original 401
			// is what gets classified and returned.
			requestsTotal.WithLabelValues(method, "4xx").Inc()
			return nil, apperrors.Classify(http.StatusUnauthorized, raw)
		}
		requestRetries.Inc()

		access, _, err = c.tokens.Access(ctx)
		if err != nil {
			return nil, err
		}

		// One retry only. A second 401 falls through to classification.
		resp, err = c.execute(ctx, method, path, payload, access)
		if err != nil {
			return nil, err
		}
	}

	return c.finish(ctx, method, path, resp)
}

func (c *Client) execute(ctx context.Context, method, path string, payload []byte, access string) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, &apperrors.AppError{
			Code:    apperrors.CodeUnknownError,
			Message: apperrors.UserMessage(apperrors.CodeUnknownError, ""),
			Status:  0,
			Err:     err,
		}
	}
	return resp, nil
}

func (c *Client) finish(ctx context.Context, method, path string, resp *http.Response) (*Result, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	requestsTotal.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := apperrors.Classify(resp.StatusCode, raw)
		c.logger.WarnContext(ctx, "api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("code", appErr.Code),
		)
		return nil, appErr
	}

	return &Result{
		Status:    resp.StatusCode,
		Body:      raw,
		NoContent: resp.StatusCode == http.StatusNoContent || len(raw) == 0,
	}, nil
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}
