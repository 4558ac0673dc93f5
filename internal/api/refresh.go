package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/campus-eats/appkit/pkg/errors"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refresh runs one token refresh cycle. staleAccess is the access token the
// caller last saw; when another goroutine has already replaced it the cycle
// is skipped, so concurrent 401s collapse into a single refresh call.
// A failed cycle clears both tokens.
func (c *Client) refresh(ctx context.Context, staleAccess string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, ok, err := c.tokens.Access(ctx)
	if err != nil {
		return err
	}
	if ok && current != staleAccess {
		return nil
	}

	refreshToken, ok, err := c.tokens.Refresh(ctx)
	if err != nil {
		return err
	}
	if !ok {
		refreshesTotal.WithLabelValues("no_token").Inc()
		return c.expireSession(ctx, apperrors.CodeInvalidRefreshToken, nil)
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return c.expireSession(ctx, apperrors.CodeUnknownError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return c.expireSession(ctx, apperrors.CodeUnknownError, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		refreshesTotal.WithLabelValues("error").Inc()
		return c.expireSession(ctx, apperrors.CodeRefreshTokenExpired, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		refreshesTotal.WithLabelValues("error").Inc()
		return c.expireSession(ctx, apperrors.CodeRefreshTokenExpired, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		refreshesTotal.WithLabelValues("rejected").Inc()
		c.logger.WarnContext(ctx, "token refresh rejected", slog.Int("status", resp.StatusCode))
		return c.expireSession(ctx, apperrors.CodeRefreshTokenExpired, apperrors.Classify(resp.StatusCode, raw))
	}

	var rr refreshResponse
	if err := json.Unmarshal(raw, &rr); err != nil || rr.AccessToken == "" {
		refreshesTotal.WithLabelValues("malformed").Inc()
		return c.expireSession(ctx, apperrors.CodeRefreshTokenExpired, err)
	}

	if err := c.tokens.SetAccess(ctx, rr.AccessToken); err != nil {
		return err
	}
	if rr.RefreshToken != "" {
		if err := c.tokens.SetRefresh(ctx, rr.RefreshToken); err != nil {
			return err
		}
	}

	refreshesTotal.WithLabelValues("success").Inc()
	c.logger.DebugContext(ctx, "token refresh succeeded")
	return nil
}

// expireSession clears both tokens and returns a session-invalidating error.
func (c *Client) expireSession(ctx context.Context, code string, cause error) error {
	if err := c.tokens.ClearAll(ctx); err != nil {
		c.logger.ErrorContext(ctx, "clear tokens after failed refresh", slog.String("error", err.Error()))
	}
	return &apperrors.AppError{
		Code:    code,
		Message: apperrors.UserMessage(code, ""),
		Status:  http.StatusUnauthorized,
		Err:     cause,
	}
}
