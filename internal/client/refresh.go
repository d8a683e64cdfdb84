package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/eventdesk/internal/pkg/metrics"
)

// Auth endpoints
const (
	LoginPath   = "/api/auth/login"
	RefreshPath = "/api/auth/refresh"
	LogoutPath  = "/api/auth/logout"
	SessionPath = "/api/auth/session"
)

const refreshKey = "refresh"

// RefreshAccessToken exchanges the refresh token for a new access token.
// Concurrent callers share a single in-flight refresh and all observe its
// outcome. On failure the session is cleared and the redirect callback runs.
func (c *Client) RefreshAccessToken(ctx context.Context) bool {
	return c.refreshRejected(ctx, "")
}

// refreshRejected refreshes after rejected was refused by the server. If the
// held access token already differs from rejected, another call refreshed in
// the meantime and no exchange is made.
func (c *Client) refreshRejected(ctx context.Context, rejected string) bool {
	if c.refreshToken() == "" {
		return false
	}

	v, _, shared := c.refreshGroup.Do(refreshKey, func() (interface{}, error) {
		if current := c.accessToken(); rejected != "" && current != "" && current != rejected {
			return true, nil
		}
		// Waiters must not be failed by the leader's cancellation.
		return c.refresh(context.WithoutCancel(ctx)), nil
	})
	if shared {
		c.log.Debug("joined in-flight token refresh")
	}
	return v.(bool)
}

func (c *Client) refresh(ctx context.Context) bool {
	refreshToken := c.refreshToken()
	if refreshToken == "" {
		return false
	}

	tokens, err := c.exchangeRefreshToken(ctx, refreshToken)
	if err != nil {
		c.log.Error("token refresh failed", slog.String("error", err.Error()))
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		c.expireSession()
		return false
	}

	c.setAccessToken(tokens.AccessToken)
	if tokens.RefreshToken != "" && tokens.RefreshToken != refreshToken {
		c.setRefreshToken(tokens.RefreshToken)
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	c.log.Info("successfully refreshed token",
		slog.String("token_prefix", tokenPreview(tokens.AccessToken)))
	return true
}

func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (*SessionTokens, error) {
	rc := newRequestConfig([]RequestOption{
		Method(http.MethodPost),
		JSONBody(map[string]string{"refresh_token": refreshToken}),
		anonymous(),
	})

	fullURL, err := c.resolve(RefreshPath, nil)
	if err != nil {
		return nil, err
	}

	status, body, _, err := c.dispatch(ctx, fullURL, rc)
	if err != nil {
		return nil, networkError(err)
	}

	payload, err := interpret(status, body)
	if err != nil {
		return nil, err
	}

	resp, err := decodeSessionResponse(payload)
	if err != nil {
		return nil, err
	}
	return &resp.Session, nil
}

var errMissingAccessToken = errors.New("response has no session.access_token")

// decodeSessionResponse accepts {"session": {...}} either as the envelope's
// data or as the bare body.
func decodeSessionResponse(payload []byte) (*LoginResponse, error) {
	if len(payload) == 0 {
		return nil, malformedError(errMissingAccessToken)
	}
	var resp LoginResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, malformedError(err)
	}
	if resp.Session.AccessToken == "" {
		return nil, malformedError(errMissingAccessToken)
	}
	return &resp, nil
}
