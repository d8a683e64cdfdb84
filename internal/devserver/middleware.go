package devserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/eventdesk/internal/auth"
	"github.com/devilmonastery/eventdesk/internal/pkg/metrics"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// logRequest logs every request and records HTTP metrics by route template
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip health checks and scrapes to reduce noise
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		metrics.HTTPActiveRequests.Inc()
		defer metrics.HTTPActiveRequests.Dec()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // default if WriteHeader not called
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		route := routeTemplate(s.router, r)
		metrics.RecordHTTPRequest(r.Method, route, wrapped.statusCode, duration)

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			slog.Int("status", wrapped.statusCode),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.Int64("bytes", wrapped.written),
			slog.String("request_id", r.Header.Get("X-Request-ID")),
		}
		if wrapped.statusCode >= 500 {
			s.log.Error("request failed", attrs...)
		} else {
			s.log.Debug("request", attrs...)
		}
	})
}

// routeTemplate resolves the mux path template so metrics labels stay bounded
func routeTemplate(router *mux.Router, r *http.Request) string {
	var match mux.RouteMatch
	if router.Match(r, &match) && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// requireAuth validates the bearer access token and stores the user in the
// request context. Any failure is a 401 the client can recover from by
// refreshing.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, &apiError{status: http.StatusUnauthorized, code: "NO_TOKEN", message: "Authentication required"})
			return
		}

		claims, err := s.jwt.ValidateToken(token)
		if err != nil {
			code := "INVALID_TOKEN"
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = "TOKEN_EXPIRED"
				message = "Token expired"
			}
			s.log.Debug("rejected access token", slog.String("error", err.Error()))
			writeError(w, &apiError{status: http.StatusUnauthorized, code: code, message: message})
			return
		}

		user, err := s.store.GetUser(claims.UserID)
		if err != nil || !user.IsActive {
			writeError(w, &apiError{status: http.StatusUnauthorized, code: "INVALID_TOKEN", message: "Invalid token"})
			return
		}

		ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
			Role:   string(user.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token, ok && token != ""
}

// requireAdmin rejects non-admin users with 403
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(r.Context()); err != nil {
			writeError(w, &apiError{status: http.StatusForbidden, code: "FORBIDDEN", message: "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
