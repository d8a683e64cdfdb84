// Package devserver is an in-memory backend speaking the eventdesk REST
// envelope contract. It backs local CLI development and integration tests.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/devilmonastery/eventdesk/internal/auth"
	"github.com/devilmonastery/eventdesk/internal/config"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/idgen"
)

// Server serves the API over an in-memory Store
type Server struct {
	cfg    *config.Config
	store  *Store
	jwt    *auth.JWTManager
	log    *slog.Logger
	now    func() time.Time
	router *mux.Router
}

// Option configures a Server
type Option func(*Server)

// WithClock overrides the time source for token issuing, validation and
// record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the server logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a server and seeds the configured admin account
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg: cfg,
		now: time.Now,
		log: slog.Default().With(slog.String("component", "devserver")),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := idgen.Initialize(cfg.Server.NodeID); err != nil {
		return nil, err
	}
	if cfg.Uploads.Dir != "" {
		if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	s.store = NewStore(s.now)
	s.jwt = auth.NewJWTManager(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.AccessLifetime, s.now)

	admin, err := s.store.CreateUser(entities.UserInput{
		Email:    cfg.Auth.Admin.Email,
		Name:     cfg.Auth.Admin.Name,
		Password: cfg.Auth.Admin.Password,
		Role:     entities.RoleAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}
	s.log.Info("seeded admin user", slog.String("email", admin.Email), slog.String("user_id", admin.ID))

	if cfg.SeedDemo {
		if err := SeedDemo(s.store, s.now()); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	s.router = s.createRouter()
	return s, nil
}

// Store exposes the backing store
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.logRequest(s.router)
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	janitor, err := s.startJanitor()
	if err != nil {
		return err
	}
	defer func() { <-janitor.Stop().Done() }()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting eventdesk dev server", slog.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down dev server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// startJanitor schedules the expired-session sweep. An empty schedule
// disables it.
func (s *Server) startJanitor() (*cron.Cron, error) {
	c := cron.New()
	if schedule := s.cfg.Server.SweepSchedule; schedule != "" {
		if _, err := c.AddFunc(schedule, s.sweepSessions); err != nil {
			return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
		}
		s.log.Debug("session sweep scheduled", slog.String("schedule", schedule))
	}
	c.Start()
	return c, nil
}

func (s *Server) sweepSessions() {
	if n := s.store.PurgeExpiredSessions(); n > 0 {
		s.log.Info("purged expired sessions", slog.Int("count", n))
	}
}

// createRouter sets up the HTTP router with all routes and middleware
func (s *Server) createRouter() *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound("Route"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, &apiError{status: http.StatusMethodNotAllowed, code: "METHOD_NOT_ALLOWED", message: "Method not allowed"})
	})

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if s.cfg.Uploads.Dir != "" {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.Uploads.Dir))),
		).Methods("GET")
	}

	// Public routes
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods("POST")
	api.HandleFunc("/auth/logout", s.handleLogout).Methods("POST")
	api.HandleFunc("/contact", s.handleContact).Methods("POST")

	// Back office routes (auth required)
	protected := api.NewRoute().Subrouter()
	protected.Use(s.requireAuth)

	protected.HandleFunc("/auth/session", s.handleSession).Methods("GET")

	protected.HandleFunc("/bookings", s.handleListBookings).Methods("GET")
	protected.HandleFunc("/bookings", s.handleCreateBooking).Methods("POST")
	protected.HandleFunc("/bookings/{id}", s.handleGetBooking).Methods("GET")
	protected.HandleFunc("/bookings/{id}", s.handleUpdateBooking).Methods("PUT")
	protected.HandleFunc("/bookings/{id}", s.handleDeleteBooking).Methods("DELETE")
	protected.HandleFunc("/bookings/{id}/status", s.handleBookingStatus).Methods("PATCH")

	protected.HandleFunc("/clients", s.handleListClients).Methods("GET")
	protected.HandleFunc("/clients", s.handleCreateClient).Methods("POST")
	protected.HandleFunc("/clients/{id}", s.handleGetClient).Methods("GET")
	protected.HandleFunc("/clients/{id}", s.handleUpdateClient).Methods("PUT")
	protected.HandleFunc("/clients/{id}", s.handleDeleteClient).Methods("DELETE")
	protected.HandleFunc("/clients/{id}/bookings", s.handleClientBookings).Methods("GET")

	protected.HandleFunc("/calendar", s.handleCalendar).Methods("GET")
	protected.HandleFunc("/calendar/blocked", s.handleBlockDate).Methods("POST")
	protected.HandleFunc("/calendar/blocked/{date}", s.handleUnblockDate).Methods("DELETE")

	protected.HandleFunc("/messages", s.handleListMessages).Methods("GET")
	protected.HandleFunc("/messages/unread-count", s.handleUnreadCount).Methods("GET")
	protected.HandleFunc("/messages/{id}", s.handleGetMessage).Methods("GET")
	protected.HandleFunc("/messages/{id}", s.handleDeleteMessage).Methods("DELETE")
	protected.HandleFunc("/messages/{id}/read", s.handleMarkRead).Methods("PATCH")
	protected.HandleFunc("/messages/{id}/reply", s.handleReply).Methods("POST")

	protected.HandleFunc("/payments", s.handleListPayments).Methods("GET")
	protected.HandleFunc("/payments", s.handleCreatePayment).Methods("POST")
	protected.HandleFunc("/payments/{id}", s.handleDeletePayment).Methods("DELETE")
	protected.HandleFunc("/expenses", s.handleListExpenses).Methods("GET")
	protected.HandleFunc("/expenses", s.handleCreateExpense).Methods("POST")
	protected.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods("DELETE")
	protected.HandleFunc("/financials/summary", s.handleFinancialSummary).Methods("GET")

	protected.HandleFunc("/reports/revenue", s.handleRevenueReport).Methods("GET")
	protected.HandleFunc("/reports/bookings", s.handleBookingReport).Methods("GET")

	protected.HandleFunc("/archive", s.handleListArchive).Methods("GET")
	protected.HandleFunc("/archive/{id}", s.handleArchive).Methods("POST")
	protected.HandleFunc("/archive/{id}/restore", s.handleRestore).Methods("POST")

	protected.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	protected.HandleFunc("/upload", s.handleUpload).Methods("POST")

	// Admin routes
	admin := protected.NewRoute().Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/settings", s.handleUpdateSettings).Methods("PUT")
	admin.HandleFunc("/users", s.handleListUsers).Methods("GET")
	admin.HandleFunc("/users", s.handleCreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", s.handleGetUser).Methods("GET")
	admin.HandleFunc("/users/{id}", s.handleDeleteUser).Methods("DELETE")

	// Users may edit themselves; handler checks
	protected.HandleFunc("/users/{id}", s.handleUpdateUser).Methods("PUT")

	return router
}
