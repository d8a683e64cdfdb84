package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 16 << 20

type header struct {
	key, value string
}

type requestConfig struct {
	method      string
	body        []byte
	contentType string // overrides the JSON default when set
	headers     []header
	query       url.Values
	noCache     bool
	anonymous   bool // never attach Authorization
	noAuthRetry bool // a 401 is returned as-is, no refresh
	encodeErr   error
}

// RequestOption configures a single call
type RequestOption func(*requestConfig)

// Method sets the HTTP method. The default is GET.
func Method(m string) RequestOption {
	return func(rc *requestConfig) { rc.method = m }
}

// JSONBody encodes v as the request body
func JSONBody(v any) RequestOption {
	return func(rc *requestConfig) {
		data, err := json.Marshal(v)
		if err != nil {
			rc.encodeErr = fmt.Errorf("failed to encode request body: %w", err)
			return
		}
		rc.body = data
	}
}

// Body sends the contents of r as the request body. The reader is drained
// up front so the body can be replayed after a token refresh. The
// Content-Type stays JSON unless overridden with Header.
func Body(r io.Reader) RequestOption {
	return func(rc *requestConfig) {
		data, err := io.ReadAll(r)
		if err != nil {
			rc.encodeErr = fmt.Errorf("failed to read request body: %w", err)
			return
		}
		rc.body = data
	}
}

// Header adds a header. Caller headers are applied after the defaults,
// so they can override Content-Type.
func Header(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.headers = append(rc.headers, header{key, value}) }
}

// Query adds query parameters to the URL
func Query(q url.Values) RequestOption {
	return func(rc *requestConfig) {
		if rc.query == nil {
			rc.query = url.Values{}
		}
		for k, vs := range q {
			for _, v := range vs {
				rc.query.Add(k, v)
			}
		}
	}
}

// NoCache disables response sharing for a GET
func NoCache() RequestOption {
	return func(rc *requestConfig) { rc.noCache = true }
}

func rawBody(body []byte, contentType string) RequestOption {
	return func(rc *requestConfig) {
		rc.body = body
		rc.contentType = contentType
	}
}

func anonymous() RequestOption {
	return func(rc *requestConfig) { rc.anonymous = true }
}

func noAuthRetry() RequestOption {
	return func(rc *requestConfig) { rc.noAuthRetry = true }
}

func newRequestConfig(opts []RequestOption) *requestConfig {
	rc := &requestConfig{method: http.MethodGet}
	for _, opt := range opts {
		opt(rc)
	}
	if rc.method == "" {
		rc.method = http.MethodGet
	}
	return rc
}

func (rc *requestConfig) cacheable() bool {
	return rc.method == http.MethodGet && !rc.noCache
}

// Request issues a call against endpoint (relative to the base URL) and returns
// the unwrapped payload: the envelope's data field when present, otherwise the
// raw body. Errors are always *APIError, except for request encoding errors.
func (c *Client) Request(ctx context.Context, endpoint string, opts ...RequestOption) (json.RawMessage, error) {
	rc := newRequestConfig(opts)
	if rc.encodeErr != nil {
		return nil, rc.encodeErr
	}

	fullURL, err := c.resolve(endpoint, rc.query)
	if err != nil {
		return nil, err
	}

	if !rc.cacheable() {
		return c.execute(ctx, fullURL, rc, !rc.noAuthRetry)
	}

	key := cacheKey(rc.method, fullURL)
	entry, leader := c.cache.acquire(key)
	if leader {
		// The shared call outlives any single caller's context.
		go func() {
			payload, err := c.execute(context.WithoutCancel(ctx), fullURL, rc, !rc.noAuthRetry)
			c.cache.complete(key, entry, payload, err)
		}()
	} else {
		c.log.Debug("sharing cached response", slog.String("key", key))
	}

	payload, err := entry.wait(ctx)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(payload), nil
}

// execute runs one logical call: dispatch, 401 handling and envelope interpretation.
func (c *Client) execute(ctx context.Context, fullURL string, rc *requestConfig, retryOn401 bool) (json.RawMessage, error) {
	status, body, sentToken, err := c.dispatch(ctx, fullURL, rc)
	if err != nil {
		return nil, networkError(err)
	}

	// A held refresh token is enough to attempt recovery, even when no
	// access token was attached.
	if status == http.StatusUnauthorized && retryOn401 && !rc.anonymous &&
		(sentToken != "" || c.refreshToken() != "") {
		return c.recoverUnauthorized(ctx, fullURL, rc, sentToken)
	}

	return interpret(status, body)
}

// recoverUnauthorized refreshes the session after a 401 and retries the call once.
func (c *Client) recoverUnauthorized(ctx context.Context, fullURL string, rc *requestConfig, sentToken string) (json.RawMessage, error) {
	log := c.log.With(slog.String("method", rc.method), slog.String("url", fullURL))

	// Another call already refreshed while this one was in flight.
	if current := c.accessToken(); current != "" && current != sentToken {
		log.Debug("access token changed since request was sent, retrying")
		return c.execute(ctx, fullURL, rc, false)
	}

	if c.refreshToken() == "" {
		log.Info("access token rejected and no refresh token held")
		c.expireSession()
		return nil, unauthenticatedError()
	}

	log.Info("access token expired, attempting refresh")
	if !c.refreshRejected(ctx, sentToken) {
		return nil, unauthenticatedError()
	}

	log.Debug("retrying request with refreshed token")
	return c.execute(ctx, fullURL, rc, false)
}

// dispatch performs the HTTP round trip and returns the status, the body and
// the access token that was attached (empty if none).
func (c *Client) dispatch(ctx context.Context, fullURL string, rc *requestConfig) (int, []byte, string, error) {
	var body io.Reader
	if rc.body != nil {
		body = bytes.NewReader(rc.body)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, fullURL, body)
	if err != nil {
		return 0, nil, "", err
	}

	if rc.contentType != "" {
		req.Header.Set("Content-Type", rc.contentType)
	} else {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	var token string
	if !rc.anonymous {
		token = c.accessToken()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for _, h := range rc.headers {
		req.Header.Set(h.key, h.value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, token, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, token, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug("api call",
		slog.String("method", rc.method),
		slog.String("url", fullURL),
		slog.Int("status", resp.StatusCode),
		slog.String("token_prefix", tokenPreview(token)))

	return resp.StatusCode, data, token, nil
}

// Do issues a call and decodes the payload into T. An empty payload yields
// the zero value; a payload that does not decode is a KindMalformed error.
func Do[T any](ctx context.Context, c *Client, endpoint string, opts ...RequestOption) (T, error) {
	var out T
	payload, err := c.Request(ctx, endpoint, opts...)
	if err != nil {
		return out, err
	}
	if len(payload) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, malformedError(err)
	}
	return out, nil
}

// Get is Do with GET and optional query parameters
func Get[T any](ctx context.Context, c *Client, endpoint string, query url.Values, opts ...RequestOption) (T, error) {
	return Do[T](ctx, c, endpoint, append([]RequestOption{Query(query)}, opts...)...)
}

// Post is Do with POST and a JSON body
func Post[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...RequestOption) (T, error) {
	return Do[T](ctx, c, endpoint, append([]RequestOption{Method(http.MethodPost), JSONBody(body)}, opts...)...)
}

// Put is Do with PUT and a JSON body
func Put[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...RequestOption) (T, error) {
	return Do[T](ctx, c, endpoint, append([]RequestOption{Method(http.MethodPut), JSONBody(body)}, opts...)...)
}

// Delete is Do with DELETE
func Delete[T any](ctx context.Context, c *Client, endpoint string, opts ...RequestOption) (T, error) {
	return Do[T](ctx, c, endpoint, append([]RequestOption{Method(http.MethodDelete)}, opts...)...)
}
