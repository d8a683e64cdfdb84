package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

// SessionTokens is the session block returned by login and refresh
type SessionTokens struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// LoginResponse is the server's answer to a login
type LoginResponse struct {
	User    entities.User `json:"user"`
	Session SessionTokens `json:"session"`
}

// SessionInfo describes the current server-side session
type SessionInfo struct {
	User      entities.User `json:"user"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

// Login authenticates with email and password and stores the returned tokens.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	payload, err := c.Request(ctx, LoginPath,
		Method(http.MethodPost),
		JSONBody(map[string]string{"email": email, "password": password}),
		anonymous(),
		noAuthRetry(),
	)
	if err != nil {
		return nil, err
	}

	resp, err := decodeSessionResponse(payload)
	if err != nil {
		return nil, err
	}

	if err := c.SetTokens(resp.Session.AccessToken, resp.Session.RefreshToken); err != nil {
		// The tokens are live in memory; only persistence failed.
		c.log.Warn("failed to persist session", slog.String("error", err.Error()))
	}
	c.ClearCache()

	c.log.Info("logged in",
		slog.String("user_id", resp.User.ID),
		slog.Bool("has_refresh_token", resp.Session.RefreshToken != ""))
	return resp, nil
}

// Logout tells the server to end the session and clears local state.
// Server or network failures are logged and never returned.
func (c *Client) Logout(ctx context.Context) {
	if c.Authenticated() {
		body := map[string]string{}
		if rt := c.refreshToken(); rt != "" {
			body["refresh_token"] = rt
		}
		if _, err := c.Request(ctx, LogoutPath,
			Method(http.MethodPost),
			JSONBody(body),
			noAuthRetry(),
		); err != nil {
			c.log.Warn("logout notification failed", slog.String("error", err.Error()))
		}
	}

	c.clearSession()
	c.ClearCache()
	c.log.Info("logged out")
}

// CurrentSession asks the server who the current token belongs to.
func (c *Client) CurrentSession(ctx context.Context) (*SessionInfo, error) {
	return Do[*SessionInfo](ctx, c, SessionPath, NoCache())
}

// AccessTokenExpiry reads the exp claim of the access token without
// verifying its signature. ok is false when there is no token or the token is
// not a JWT carrying exp.
func (c *Client) AccessTokenExpiry() (expiresAt time.Time, ok bool) {
	token := c.accessToken()
	if token == "" {
		return time.Time{}, false
	}
	exp, err := TokenExpiry(token)
	if err != nil {
		c.log.Debug("failed to decode token expiry", slog.String("error", err.Error()))
		return time.Time{}, false
	}
	return exp, true
}

// TokenExpiry extracts the exp claim from an unverified JWT.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("invalid JWT: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("exp claim not found")
	}
	return claims.ExpiresAt.Time, nil
}
