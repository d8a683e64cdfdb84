package devserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devilmonastery/eventdesk/internal/config"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.JWT.SigningKey = "test-signing-key-0123456789"
	cfg.Auth.Admin.Email = testAdminEmail
	cfg.Auth.Admin.Password = testAdminPassword
	cfg.Uploads.Dir = t.TempDir()
	cfg.Uploads.MaxBytes = 1024
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server, *testClock) {
	t.Helper()
	clock := newTestClock()
	s, err := New(cfg,
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, clock
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Message string          `json:"message"`
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, testEnvelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, req)
}

func send(t *testing.T, req *http.Request) (int, testEnvelope) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", req.Method, req.URL.Path, err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, ts *httptest.Server, email, password string) loginResponse {
	t.Helper()
	status, env := call(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("login status = %d, envelope = %+v", status, env)
	}
	var resp loginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp
}

func TestLoginAndSession(t *testing.T) {
	_, ts, clock := newTestServer(t, testConfig(t))

	resp := login(t, ts, "ADMIN@example.com", testAdminPassword)
	if resp.Session.AccessToken == "" || resp.Session.RefreshToken == "" {
		t.Fatalf("login returned empty tokens: %+v", resp.Session)
	}
	if want := clock.Now().Add(15 * time.Minute); !resp.Session.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %v, want %v", resp.Session.ExpiresAt, want)
	}
	if resp.User.Email != testAdminEmail || !resp.User.IsAdmin() {
		t.Errorf("user = %+v, want admin %s", resp.User, testAdminEmail)
	}

	status, env := call(t, ts, http.MethodGet, "/api/auth/session", resp.Session.AccessToken, nil)
	if status != http.StatusOK {
		t.Fatalf("session status = %d, error = %+v", status, env.Error)
	}
	var session sessionResponse
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.User.ID != resp.User.ID {
		t.Errorf("session user = %s, want %s", session.User.ID, resp.User.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, ts, _ := newTestServer(t, testConfig(t))

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{"wrong password", map[string]string{"email": testAdminEmail, "password": "nope"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown user", map[string]string{"email": "who@example.com", "password": "x"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"missing fields", map[string]string{"email": testAdminEmail}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, ts, http.MethodPost, "/api/auth/login", "", tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("envelope = %+v, want code %s", env, tt.wantCode)
			}
		})
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	s, ts, clock := newTestServer(t, testConfig(t))
	first := login(t, ts, testAdminEmail, testAdminPassword)

	clock.Advance(time.Minute)
	status, env := call(t, ts, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh_token": first.Session.RefreshToken,
	})
	if status != http.StatusOK {
		t.Fatalf("refresh status = %d, error = %+v", status, env.Error)
	}
	var second loginResponse
	if err := json.Unmarshal(env.Data, &second); err != nil {
		t.Fatalf("decode refresh: %v", err)
	}
	if second.Session.AccessToken == first.Session.AccessToken {
		t.Error("refresh returned the same access token")
	}
	if second.Session.RefreshToken == first.Session.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if got := s.Store().SessionCount(); got != 1 {
		t.Errorf("SessionCount() = %d, want 1", got)
	}

	// The consumed token is dead
	status, env = call(t, ts, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh_token": first.Session.RefreshToken,
	})
	if status != http.StatusUnauthorized || env.Error == nil || env.Error.Code != "INVALID_REFRESH_TOKEN" {
		t.Errorf("reused refresh: status = %d, envelope = %+v", status, env)
	}
}

func TestRefreshTokenExpires(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWT.RefreshLifetime = time.Hour
	_, ts, clock := newTestServer(t, cfg)
	resp := login(t, ts, testAdminEmail, testAdminPassword)

	clock.Advance(time.Hour)
	status, env := call(t, ts, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh_token": resp.Session.RefreshToken,
	})
	if status != http.StatusUnauthorized || env.Error.Code != "INVALID_REFRESH_TOKEN" {
		t.Errorf("status = %d, envelope = %+v", status, env)
	}
}

func TestSessionJanitor(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWT.RefreshLifetime = time.Hour
	s, ts, clock := newTestServer(t, cfg)
	login(t, ts, testAdminEmail, testAdminPassword)

	janitor, err := s.startJanitor()
	if err != nil {
		t.Fatalf("startJanitor() error = %v", err)
	}
	<-janitor.Stop().Done()
	if got := len(janitor.Entries()); got != 1 {
		t.Errorf("scheduled jobs = %d, want 1", got)
	}

	clock.Advance(time.Hour)
	s.sweepSessions()
	if s.Store().SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after sweep, want 0", s.Store().SessionCount())
	}

	s.cfg.Server.SweepSchedule = "every tuesday"
	if _, err := s.startJanitor(); err == nil {
		t.Error("startJanitor() with a bad schedule succeeded")
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	_, ts, clock := newTestServer(t, testConfig(t))
	resp := login(t, ts, testAdminEmail, testAdminPassword)

	if status, _ := call(t, ts, http.MethodGet, "/api/bookings", resp.Session.AccessToken, nil); status != http.StatusOK {
		t.Fatalf("fresh token status = %d, want 200", status)
	}

	clock.Advance(16 * time.Minute)
	status, env := call(t, ts, http.MethodGet, "/api/bookings", resp.Session.AccessToken, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expired token status = %d, want 401", status)
	}
	if env.Error.Code != "TOKEN_EXPIRED" {
		t.Errorf("code = %s, want TOKEN_EXPIRED", env.Error.Code)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s, ts, _ := newTestServer(t, testConfig(t))
	resp := login(t, ts, testAdminEmail, testAdminPassword)

	status, env := call(t, ts, http.MethodPost, "/api/auth/logout", resp.Session.AccessToken, map[string]string{
		"refresh_token": resp.Session.RefreshToken,
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("logout status = %d, envelope = %+v", status, env)
	}
	if got := s.Store().SessionCount(); got != 0 {
		t.Errorf("SessionCount() = %d after logout, want 0", got)
	}
}

func TestEnvelopeErrors(t *testing.T) {
	s, ts, _ := newTestServer(t, testConfig(t))
	admin := login(t, ts, testAdminEmail, testAdminPassword)

	if _, err := s.Store().CreateUser(userInput("staff@example.com", "staff-password", "staff")); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	staff := login(t, ts, "staff@example.com", "staff-password")

	booking := map[string]any{
		"client_name":  "Ada Lovelace",
		"client_email": "ada@example.com",
		"event_type":   "wedding",
		"event_date":   "2026-06-20",
	}
	if status, env := call(t, ts, http.MethodPost, "/api/bookings", admin.Session.AccessToken, booking); status != http.StatusCreated {
		t.Fatalf("create booking status = %d, error = %+v", status, env.Error)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"no token", http.MethodGet, "/api/bookings", "", nil, http.StatusUnauthorized, "NO_TOKEN"},
		{"garbage token", http.MethodGet, "/api/bookings", "not-a-jwt", nil, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"missing booking", http.MethodGet, "/api/bookings/404", admin.Session.AccessToken, nil, http.StatusNotFound, "NOT_FOUND"},
		{"date taken", http.MethodPost, "/api/bookings", admin.Session.AccessToken, booking, http.StatusConflict, "DATE_UNAVAILABLE"},
		{"bad status filter", http.MethodGet, "/api/bookings?status=maybe", admin.Session.AccessToken, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad range", http.MethodGet, "/api/calendar?from=2026-05-01&to=2026-04-01", admin.Session.AccessToken, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"staff edits settings", http.MethodPut, "/api/settings", staff.Session.AccessToken, map[string]any{"business_name": "x"}, http.StatusForbidden, "FORBIDDEN"},
		{"staff lists users", http.MethodGet, "/api/users", staff.Session.AccessToken, nil, http.StatusForbidden, "FORBIDDEN"},
		{"staff edits admin", http.MethodPut, "/api/users/" + admin.User.ID, staff.Session.AccessToken, map[string]any{"name": "x"}, http.StatusForbidden, "FORBIDDEN"},
		{"staff promotes self", http.MethodPut, "/api/users/" + staff.User.ID, staff.Session.AccessToken, map[string]any{"role": "admin"}, http.StatusForbidden, "FORBIDDEN"},
		{"unknown route", http.MethodGet, "/api/nothing-here", admin.Session.AccessToken, nil, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, ts, tt.method, tt.path, tt.token, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (envelope %+v)", status, tt.wantStatus, env)
			}
			if env.Success {
				t.Fatal("success = true on an error response")
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestDateUnavailableDetails(t *testing.T) {
	_, ts, _ := newTestServer(t, testConfig(t))
	admin := login(t, ts, testAdminEmail, testAdminPassword)
	token := admin.Session.AccessToken

	if status, env := call(t, ts, http.MethodPost, "/api/calendar/blocked", token, map[string]string{"date": "2026-07-04", "reason": "Holiday"}); status != http.StatusCreated {
		t.Fatalf("block status = %d, error = %+v", status, env.Error)
	}

	status, env := call(t, ts, http.MethodPost, "/api/bookings", token, map[string]any{
		"client_name":  "Grace Hopper",
		"client_email": "grace@example.com",
		"event_date":   "2026-07-04",
	})
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
	var details map[string]string
	if err := json.Unmarshal(env.Error.Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details["date"] != "2026-07-04" {
		t.Errorf("details = %v, want date 2026-07-04", details)
	}
}

func TestStaffCanEditOwnName(t *testing.T) {
	s, ts, _ := newTestServer(t, testConfig(t))
	if _, err := s.Store().CreateUser(userInput("staff@example.com", "staff-password", "staff")); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	staff := login(t, ts, "staff@example.com", "staff-password")

	status, env := call(t, ts, http.MethodPut, "/api/users/"+staff.User.ID, staff.Session.AccessToken, map[string]any{"name": "Renamed"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	u, err := s.Store().GetUser(staff.User.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", u.Name)
	}
}

func uploadRequest(t *testing.T, url, token, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(content)
	w.Close()

	req, err := http.NewRequest(http.MethodPost, url+"/api/upload", &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpload(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.PublicURL = "https://files.example.com/"
	_, ts, _ := newTestServer(t, cfg)
	token := login(t, ts, testAdminEmail, testAdminPassword).Session.AccessToken

	status, env := send(t, uploadRequest(t, ts.URL, token, "Floor Plan.PNG", []byte("png bytes")))
	if status != http.StatusCreated {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	var result uploadResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !strings.HasPrefix(result.Filename, "floor-plan-") || !strings.HasSuffix(result.Filename, ".png") {
		t.Errorf("filename = %q, want floor-plan-<id>.png", result.Filename)
	}
	if want := "https://files.example.com/uploads/" + result.Filename; result.URL != want {
		t.Errorf("url = %q, want %q", result.URL, want)
	}
	if result.OriginalName != "Floor Plan.PNG" || result.Size != 9 {
		t.Errorf("result = %+v", result)
	}

	stored, err := os.ReadFile(filepath.Join(cfg.Uploads.Dir, result.Filename))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(stored) != "png bytes" {
		t.Errorf("stored content = %q", stored)
	}

	resp, err := http.Get(ts.URL + "/uploads/" + result.Filename)
	if err != nil {
		t.Fatalf("GET upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET upload status = %d, want 200", resp.StatusCode)
	}
}

func TestUploadRejections(t *testing.T) {
	_, ts, _ := newTestServer(t, testConfig(t))
	token := login(t, ts, testAdminEmail, testAdminPassword).Session.AccessToken

	tests := []struct {
		name       string
		filename   string
		content    []byte
		wantStatus int
		wantCode   string
	}{
		{"disallowed extension", "script.sh", []byte("echo"), http.StatusBadRequest, "INVALID_FILE_TYPE"},
		{"too large", "big.jpg", bytes.Repeat([]byte("x"), 4096), http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := send(t, uploadRequest(t, ts.URL, token, tt.filename, tt.content))
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts, _ := newTestServer(t, testConfig(t))
	login(t, ts, testAdminEmail, testAdminPassword)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"eventdesk_http_requests_total",
		`path="/api/auth/login"`,
		"eventdesk_active_sessions",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestSeedDemo(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedDemo = true
	s, _, clock := newTestServer(t, cfg)

	if got := len(s.Store().ListBookings(BookingQuery{})); got != 3 {
		t.Errorf("bookings = %d, want 3", got)
	}
	if got := s.Store().UnreadCount(); got != 2 {
		t.Errorf("unread messages = %d, want 2", got)
	}
	week := clock.Now().AddDate(0, 0, 7).Format("2006-01-02")
	events := s.Store().CalendarEvents(week, week)
	if len(events) != 1 || events[0].Kind != "blocked" {
		t.Errorf("events on %s = %+v, want one blocked date", week, events)
	}
}
