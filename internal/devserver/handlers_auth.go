package devserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/devilmonastery/eventdesk/internal/auth"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

type sessionTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type loginResponse struct {
	User    entities.User `json:"user"`
	Session sessionTokens `json:"session"`
}

type sessionResponse struct {
	User      entities.User `json:"user"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

// issueSession signs an access token and registers a fresh refresh token
func (s *Server) issueSession(user *entities.User) (*sessionTokens, error) {
	access, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateTokenID()
	if err != nil {
		return nil, err
	}
	s.store.SaveSession(refresh, user.ID, s.now().Add(s.cfg.Auth.JWT.RefreshLifetime))
	return &sessionTokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, validationError("email and password are required"))
		return
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		s.log.Info("login rejected", slog.String("email", req.Email), slog.String("reason", err.Error()))
		writeError(w, err)
		return
	}

	tokens, err := s.issueSession(user)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("user logged in", slog.String("user_id", user.ID), slog.String("email", user.Email))
	writeData(w, http.StatusOK, loginResponse{User: *user, Session: *tokens})
}

// handleRefresh exchanges a refresh token for a new access token. The
// refresh token is rotated; the old one stops working.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.RefreshToken == "" {
		writeError(w, ErrSessionNotFound)
		return
	}

	userID, err := s.store.ConsumeSession(req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := s.store.GetUser(userID)
	if err != nil {
		writeError(w, ErrSessionNotFound)
		return
	}

	tokens, err := s.issueSession(user)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Debug("refreshed session", slog.String("user_id", user.ID))
	writeData(w, http.StatusOK, loginResponse{User: *user, Session: *tokens})
}

// handleLogout revokes the refresh token in the body, if any. It never
// fails so clients can always finish logging out.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err == nil && req.RefreshToken != "" {
		s.store.RevokeSession(req.RefreshToken)
	}
	writeMessage(w, "Logged out")
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	uc, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		writeError(w, &apiError{status: http.StatusUnauthorized, code: "UNAUTHORIZED", message: "Authentication required"})
		return
	}
	user, err := s.store.GetUser(uc.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := sessionResponse{User: *user}
	if token, ok := bearerToken(r); ok {
		if claims, err := s.jwt.ValidateToken(token); err == nil && claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			resp.ExpiresAt = &exp
		}
	}
	writeData(w, http.StatusOK, resp)
}

// handleContact accepts a public contact-form message
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var in ContactInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	msg, err := s.store.CreateMessage(in)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("contact message received", slog.String("message_id", msg.ID))
	writeData(w, http.StatusCreated, msg)
}
