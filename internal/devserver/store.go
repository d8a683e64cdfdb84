package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/idgen"
	"github.com/devilmonastery/eventdesk/internal/pkg/metrics"
)

// userRecord is a user plus its password hash
type userRecord struct {
	entities.User
	passwordHash []byte
}

// refreshSession is the server side of an opaque refresh token
type refreshSession struct {
	userID    string
	expiresAt time.Time
}

// Store keeps every resource in memory. All methods are safe for
// concurrent use.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[string]*userRecord
	sessions map[string]refreshSession

	bookings map[string]*entities.Booking
	clients  map[string]*entities.Client
	blocked  map[string]entities.BlockedDate
	messages map[string]*entities.Message
	payments map[string]*entities.Payment
	expenses map[string]*entities.Expense
	settings entities.Settings
}

// NewStore creates an empty store. now may be nil.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		users:    make(map[string]*userRecord),
		sessions: make(map[string]refreshSession),
		bookings: make(map[string]*entities.Booking),
		clients:  make(map[string]*entities.Client),
		blocked:  make(map[string]entities.BlockedDate),
		messages: make(map[string]*entities.Message),
		payments: make(map[string]*entities.Payment),
		expenses: make(map[string]*entities.Expense),
		settings: entities.Settings{
			BusinessName:    "EventDesk Venue",
			Timezone:        "UTC",
			Currency:        "USD",
			DepositPercent:  30,
			EventTypes:      []string{"wedding", "birthday", "corporate", "other"},
			BookingsEnabled: true,
		},
	}
}

// Users

// CreateUser adds a user with a bcrypt hashed password
func (s *Store) CreateUser(in entities.UserInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, validationError("email and password are required")
	}
	role := in.Role
	if role == "" {
		role = entities.RoleStaff
	}
	if role != entities.RoleStaff && role != entities.RoleAdmin {
		return nil, validationError("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmailLocked(email) != nil {
		return nil, fmt.Errorf("user %s: %w", email, ErrDuplicate)
	}

	now := s.now()
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	rec := &userRecord{
		User: entities.User{
			ID:        idgen.GenerateID(),
			Email:     email,
			Name:      in.Name,
			Role:      role,
			IsActive:  active,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}
	s.users[rec.ID] = rec
	u := rec.User
	return &u, nil
}

func (s *Store) userByEmailLocked(email string) *userRecord {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// Authenticate checks an email/password pair and records the login
func (s *Store) Authenticate(email, password string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	rec := s.userByEmailLocked(email)
	var hash []byte
	if rec != nil {
		hash = rec.passwordHash
	}
	s.mu.RUnlock()

	if rec == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !rec.IsActive {
		return nil, ErrUserInactive
	}
	now := s.now()
	rec.LastLogin = &now
	u := rec.User
	return &u, nil
}

// GetUser returns a user by id
func (s *Store) GetUser(id string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, notFound("User")
	}
	u := rec.User
	return &u, nil
}

// ListUsers returns every user ordered by email
func (s *Store) ListUsers() []entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// UpdateUser applies the non-empty fields of in
func (s *Store) UpdateUser(id string, in entities.UserInput) (*entities.User, error) {
	var hash []byte
	if in.Password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, notFound("User")
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		if other := s.userByEmailLocked(email); other != nil && other.ID != id {
			return nil, fmt.Errorf("user %s: %w", email, ErrDuplicate)
		}
		rec.Email = email
	}
	if in.Name != "" {
		rec.Name = in.Name
	}
	if in.Role != "" {
		if in.Role != entities.RoleStaff && in.Role != entities.RoleAdmin {
			return nil, validationError("unknown role %q", in.Role)
		}
		rec.Role = in.Role
	}
	if in.IsActive != nil {
		rec.IsActive = *in.IsActive
	}
	if hash != nil {
		rec.passwordHash = hash
	}
	rec.UpdatedAt = s.now()
	u := rec.User
	return &u, nil
}

// DeleteUser removes a user and revokes its sessions
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return notFound("User")
	}
	delete(s.users, id)
	for token, sess := range s.sessions {
		if sess.userID == id {
			delete(s.sessions, token)
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// Sessions

// SaveSession registers a refresh token
func (s *Store) SaveSession(token, userID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = refreshSession{userID: userID, expiresAt: expiresAt}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// ConsumeSession validates a refresh token and removes it, so each token
// can be exchanged once.
func (s *Store) ConsumeSession(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	delete(s.sessions, token)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))

	if !s.now().Before(sess.expiresAt) {
		return "", ErrSessionNotFound
	}
	if rec, ok := s.users[sess.userID]; !ok || !rec.IsActive {
		return "", ErrSessionNotFound
	}
	return sess.userID, nil
}

// RevokeSession drops a refresh token. Unknown tokens are ignored.
func (s *Store) RevokeSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// PurgeExpiredSessions drops refresh tokens past their expiry and returns
// how many were removed.
func (s *Store) PurgeExpiredSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
			purged++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return purged
}

// SessionCount returns the number of live refresh tokens
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Settings

// GetSettings returns a copy of the venue settings
func (s *Store) GetSettings() entities.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySettings(s.settings)
}

// UpdateSettings replaces the venue settings
func (s *Store) UpdateSettings(in entities.Settings) (entities.Settings, error) {
	if strings.TrimSpace(in.BusinessName) == "" {
		return entities.Settings{}, validationError("business name is required")
	}
	if in.DepositPercent < 0 || in.DepositPercent > 100 {
		return entities.Settings{}, validationError("deposit percent must be between 0 and 100")
	}
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return entities.Settings{}, validationError("unknown timezone %q", in.Timezone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = copySettings(in)
	return copySettings(s.settings), nil
}

func copySettings(in entities.Settings) entities.Settings {
	out := in
	out.EventTypes = append([]string(nil), in.EventTypes...)
	if in.Prices != nil {
		out.Prices = make(map[string]float64, len(in.Prices))
		for k, v := range in.Prices {
			out.Prices[k] = v
		}
	}
	return out
}
