package client

import (
	"errors"
	"sync"
)

// Keys under which the session tokens are persisted.
const (
	AccessTokenKey  = "auth_token"
	RefreshTokenKey = "refresh_token"
)

// ErrStoreUnavailable can be returned by a TokenStore that cannot be reached.
// The client treats it like any other store error: no token, unauthenticated.
var ErrStoreUnavailable = errors.New("token store unavailable")

// TokenStore persists the session tokens across process restarts.
// Different implementations can store tokens in files, redis, memory, etc.
type TokenStore interface {
	// Get returns the stored value for key and whether it was present
	Get(key string) (value string, found bool, err error)

	// Set stores value under key, overwriting any previous value
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Session is the pair of credentials held by a Client.
// An empty AccessToken means requests go out unauthenticated.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether the session holds no credentials at all.
func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

// MemoryTokenStore keeps tokens in process memory. Useful for tests and
// short-lived processes that must not write credentials to disk.
type MemoryTokenStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryTokenStore creates an empty in-memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{data: make(map[string]string)}
}

func (m *MemoryTokenStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	v, ok := m.data[key]
	m.mu.RUnlock()
	return v, ok, nil
}

func (m *MemoryTokenStore) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// loadSession reads both tokens from the store. Store failures are reported
// but leave the corresponding token empty.
func loadSession(store TokenStore) (Session, error) {
	var s Session
	var errs []error

	access, ok, err := store.Get(AccessTokenKey)
	if err != nil {
		errs = append(errs, err)
	} else if ok {
		s.AccessToken = access
	}

	refresh, ok, err := store.Get(RefreshTokenKey)
	if err != nil {
		errs = append(errs, err)
	} else if ok {
		s.RefreshToken = refresh
	}

	return s, errors.Join(errs...)
}
