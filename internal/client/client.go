package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Default tuning for the GET response cache
const (
	DefaultCacheTTL            = 5 * time.Second
	DefaultCacheSweepThreshold = 100
	DefaultTimeout             = 30 * time.Second
)

// Version is sent in the User-Agent header
var Version = "dev"

// Doer performs a single HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the authenticated request pipeline for the booking API.
// It owns the session tokens, refreshes them transparently and
// de-duplicates concurrent identical GET requests.
//
// A Client is safe for concurrent use. Several clients can coexist; they
// share nothing but the process-wide metrics.
type Client struct {
	baseURL    *url.URL
	httpClient Doer
	store      TokenStore
	redirect   func()
	now        func() time.Time
	log        *slog.Logger
	userAgent  string

	mu      sync.RWMutex
	session Session

	refreshGroup singleflight.Group
	cache        *responseCache
}

type options struct {
	httpClient     Doer
	store          TokenStore
	redirect       func()
	now            func() time.Time
	log            *slog.Logger
	userAgent      string
	cacheTTL       time.Duration
	sweepThreshold int
	cacheFailures  bool
}

// Option configures a Client
type Option func(*options)

// WithHTTPClient sets the transport used for every request
func WithHTTPClient(d Doer) Option {
	return func(o *options) { o.httpClient = d }
}

// WithTokenStore sets where the session tokens are persisted
func WithTokenStore(s TokenStore) Option {
	return func(o *options) { o.store = s }
}

// WithRedirect sets the callback invoked when authentication is unrecoverable
func WithRedirect(fn func()) Option {
	return func(o *options) { o.redirect = fn }
}

// WithClock overrides the clock used for cache ages
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithCacheTTL sets how long a GET response is shared
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) { o.cacheTTL = d }
}

// WithCacheSweepThreshold sets the entry count above which expired entries are swept
func WithCacheSweepThreshold(n int) Option {
	return func(o *options) { o.sweepThreshold = n }
}

// WithCacheFailures controls whether failed GETs stay cached for their TTL.
// When false a failed entry is evicted as soon as it settles so the next
// call retries immediately.
func WithCacheFailures(keep bool) Option {
	return func(o *options) { o.cacheFailures = keep }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	o := options{
		cacheTTL:       DefaultCacheTTL,
		sweepThreshold: DefaultCacheSweepThreshold,
		cacheFailures:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.httpClient == nil {
		o.httpClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: NewMetricsTransport(nil),
		}
	}
	if o.store == nil {
		o.store = NewMemoryTokenStore()
	}
	if o.redirect == nil {
		o.redirect = func() {}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.log == nil {
		o.log = slog.Default().With(slog.String("component", "api_client"))
	}
	if o.userAgent == "" {
		o.userAgent = "eventdesk/" + Version
	}
	if o.cacheTTL <= 0 {
		o.cacheTTL = DefaultCacheTTL
	}
	if o.sweepThreshold <= 0 {
		o.sweepThreshold = DefaultCacheSweepThreshold
	}

	c := &Client{
		baseURL:    u,
		httpClient: o.httpClient,
		store:      o.store,
		redirect:   o.redirect,
		now:        o.now,
		log:        o.log,
		userAgent:  o.userAgent,
		cache:      newResponseCache(o.cacheTTL, o.sweepThreshold, o.cacheFailures, o.now),
	}

	session, err := loadSession(o.store)
	if err != nil {
		c.log.Warn("failed to load stored session, starting unauthenticated",
			slog.String("error", err.Error()))
	}
	c.session = session

	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Authenticated reports whether an access token is held
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.AccessToken != ""
}

// HasSession reports whether any token is held. A session holding only a
// refresh token is recovered on the next request.
func (c *Client) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.session.Empty()
}

// Tokens returns a copy of the current session
func (c *Client) Tokens() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetTokens replaces the session and persists it. An empty refresh token
// removes any stored one.
func (c *Client) SetTokens(accessToken, refreshToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = Session{AccessToken: accessToken, RefreshToken: refreshToken}
	if err := c.persistLocked(AccessTokenKey, accessToken); err != nil {
		return err
	}
	return c.persistLocked(RefreshTokenKey, refreshToken)
}

// ClearCache drops every cached GET response
func (c *Client) ClearCache() {
	c.cache.clear()
}

// CacheLen returns the number of cached GET entries, fresh or not
func (c *Client) CacheLen() int {
	return c.cache.len()
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.AccessToken
}

func (c *Client) refreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.RefreshToken
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.AccessToken = token
	if err := c.persistLocked(AccessTokenKey, token); err != nil {
		c.log.Warn("failed to persist access token", slog.String("error", err.Error()))
	}
}

func (c *Client) setRefreshToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.RefreshToken = token
	if err := c.persistLocked(RefreshTokenKey, token); err != nil {
		c.log.Warn("failed to persist refresh token", slog.String("error", err.Error()))
	}
}

// persistLocked writes a token through to the store; an empty value deletes it.
func (c *Client) persistLocked(key, value string) error {
	if value == "" {
		if err := c.store.Delete(key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	}
	if err := c.store.Set(key, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// clearSession drops both tokens from memory and the store. It reports
// whether there was anything to drop.
func (c *Client) clearSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	hadSession := !c.session.Empty()
	c.session = Session{}
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := c.persistLocked(key, ""); err != nil {
			c.log.Warn("failed to clear stored token", slog.String("error", err.Error()))
		}
	}
	return hadSession
}

// expireSession clears the session and sends the user to the login view,
// once per lost session.
func (c *Client) expireSession() {
	if c.clearSession() {
		c.redirect()
	}
}

// resolve joins endpoint onto the base URL. Absolute URLs are used as-is.
func (c *Client) resolve(endpoint string, query url.Values) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	var u *url.URL
	if ref.IsAbs() {
		u = ref
	} else {
		base := *c.baseURL
		// RawPath keeps escaped ids such as a%2Fb intact
		base.RawPath = strings.TrimRight(base.EscapedPath(), "/") + "/" + strings.TrimLeft(ref.EscapedPath(), "/")
		base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
		base.RawQuery = ref.RawQuery
		u = &base
	}

	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// tokenPreview shortens a token for debug logs
func tokenPreview(token string) string {
	if len(token) > 12 {
		return token[:12] + "..."
	}
	return token
}
