package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/config"
	"github.com/devilmonastery/eventdesk/internal/devserver"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse battery"
)

type serverClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *serverClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *serverClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	svc       *Service
	server    *devserver.Server
	clock     *serverClock
	redirects *atomic.Int32
}

// newHarness starts a dev server and returns a logged-in service
func newHarness(t *testing.T) *harness {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.Auth.JWT.SigningKey = "api-test-signing-key-0123456789"
	cfg.Auth.JWT.RefreshLifetime = 24 * time.Hour
	cfg.Auth.Admin.Email = adminEmail
	cfg.Auth.Admin.Password = adminPassword
	cfg.Uploads.Dir = t.TempDir()

	clock := &serverClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	srv, err := devserver.New(cfg, devserver.WithClock(clock.Now), devserver.WithLogger(quiet))
	if err != nil {
		t.Fatalf("devserver.New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	redirects := &atomic.Int32{}
	c, err := client.New(ts.URL,
		client.WithLogger(quiet),
		client.WithRedirect(func() { redirects.Add(1) }),
	)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	if _, err := c.Login(context.Background(), adminEmail, adminPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return &harness{svc: New(c), server: srv, clock: clock, redirects: redirects}
}

func TestBookingLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	before, err := h.svc.Bookings.List(ctx, BookingFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(before) != 0 {
		t.Fatalf("List() = %d bookings on a fresh server", len(before))
	}

	b, err := h.svc.Bookings.Create(ctx, entities.BookingInput{
		ClientName:  "Ada Lovelace",
		ClientEmail: "ada@example.com",
		EventType:   "wedding",
		EventDate:   "2026-06-20",
		GuestCount:  80,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The empty listing above is cached; the write must invalidate it
	after, err := h.svc.Bookings.List(ctx, BookingFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(after) != 1 || after[0].ID != b.ID {
		t.Fatalf("List() after create = %+v, want the new booking", after)
	}

	confirmed, err := h.svc.Bookings.UpdateStatus(ctx, b.ID, entities.BookingConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if confirmed.Status != entities.BookingConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}

	filtered, err := h.svc.Bookings.List(ctx, BookingFilter{Status: entities.BookingPending})
	if err != nil {
		t.Fatalf("List(pending) error = %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("List(pending) = %d bookings, want 0", len(filtered))
	}

	clientBookings, err := h.svc.Clients.Bookings(ctx, b.ClientID)
	if err != nil {
		t.Fatalf("Clients.Bookings() error = %v", err)
	}
	if len(clientBookings) != 1 {
		t.Errorf("Clients.Bookings() = %d, want 1", len(clientBookings))
	}

	if _, err := h.svc.Archive.ArchiveBooking(ctx, b.ID); err != nil {
		t.Fatalf("ArchiveBooking() error = %v", err)
	}
	archived, err := h.svc.Archive.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("Archive.List() error = %v", err)
	}
	if len(archived) != 1 {
		t.Errorf("Archive.List() = %d, want 1", len(archived))
	}
	if _, err := h.svc.Archive.Restore(ctx, b.ID); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if err := h.svc.Bookings.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = h.svc.Bookings.Get(ctx, b.ID)
	if !client.IsNotFound(err) {
		t.Errorf("Get() after delete error = %v, want 404", err)
	}
}

func TestServerErrorsCarryEnvelopeCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Calendar.BlockDate(ctx, "2026-07-04", "Holiday"); err != nil {
		t.Fatalf("BlockDate() error = %v", err)
	}
	_, err := h.svc.Bookings.Create(ctx, entities.BookingInput{
		ClientName:  "Grace Hopper",
		ClientEmail: "grace@example.com",
		EventDate:   "2026-07-04",
	})

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T %v, want *client.APIError", err, err)
	}
	if apiErr.Status != 409 || apiErr.Code != "DATE_UNAVAILABLE" {
		t.Errorf("APIError = %d %s, want 409 DATE_UNAVAILABLE", apiErr.Status, apiErr.Code)
	}
	if !strings.Contains(string(apiErr.Details), "2026-07-04") {
		t.Errorf("details = %s, want the date", apiErr.Details)
	}
}

func TestClientSideValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"booking without date", func() error {
			_, err := h.svc.Bookings.Create(ctx, entities.BookingInput{ClientName: "A"})
			return err
		}},
		{"booking without client", func() error {
			_, err := h.svc.Bookings.Create(ctx, entities.BookingInput{EventDate: "2026-05-01"})
			return err
		}},
		{"unknown status", func() error {
			_, err := h.svc.Bookings.UpdateStatus(ctx, "1", "maybe")
			return err
		}},
		{"empty id", func() error {
			_, err := h.svc.Clients.Get(ctx, "")
			return err
		}},
		{"bad block date", func() error {
			_, err := h.svc.Calendar.BlockDate(ctx, "July 4th", "")
			return err
		}},
		{"empty reply", func() error {
			_, err := h.svc.Messages.Reply(ctx, "1", "  ")
			return err
		}},
		{"deposit out of range", func() error {
			_, err := h.svc.Settings.Update(ctx, entities.Settings{BusinessName: "x", DepositPercent: 150})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("error = nil, want a validation error")
			}
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				t.Errorf("error = %v reached the server", err)
			}
		})
	}
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	before := h.svc.Client.Tokens()

	h.clock.Advance(20 * time.Minute)

	users, err := h.svc.Users.List(ctx)
	if err != nil {
		t.Fatalf("Users.List() error = %v", err)
	}
	if len(users) != 1 || users[0].Email != adminEmail {
		t.Errorf("Users.List() = %+v", users)
	}

	after := h.svc.Client.Tokens()
	if after.AccessToken == before.AccessToken || after.RefreshToken == before.RefreshToken {
		t.Error("tokens were not rotated by the refresh")
	}
	if got := h.redirects.Load(); got != 0 {
		t.Errorf("redirects = %d, want 0", got)
	}
}

func TestConcurrentCallsShareOneRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.clock.Advance(20 * time.Minute)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	calls := []func() error{
		func() error { _, err := h.svc.Clients.List(ctx, ListFilter{}); return err },
		func() error { _, err := h.svc.Messages.UnreadCount(ctx); return err },
		func() error { _, err := h.svc.Settings.Get(ctx); return err },
		func() error { _, err := h.svc.Reports.Bookings(ctx, "", ""); return err },
	}
	for _, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- call()
		}()
	}
	wg.Wait()
	close(errs)

	// Refresh tokens are single use, so any second exchange would have
	// failed and logged the session out.
	for err := range errs {
		if err != nil {
			t.Errorf("call error = %v", err)
		}
	}
	if !h.svc.Client.Authenticated() {
		t.Error("client lost its session")
	}
	if got := h.server.Store().SessionCount(); got != 1 {
		t.Errorf("server sessions = %d, want 1", got)
	}
}

func TestExpiredSessionRedirectsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.clock.Advance(48 * time.Hour)

	_, err := h.svc.Bookings.List(ctx, BookingFilter{})
	if !client.IsUnauthenticated(err) {
		t.Fatalf("error = %v, want unauthenticated", err)
	}
	_, err = h.svc.Clients.List(ctx, ListFilter{})
	if !client.IsUnauthenticated(err) && client.StatusCode(err) != 401 {
		t.Fatalf("second error = %v, want 401", err)
	}
	if got := h.redirects.Load(); got != 1 {
		t.Errorf("redirects = %d, want 1", got)
	}
	if h.svc.Client.Authenticated() {
		t.Error("client still reports a session")
	}
}

func TestFinanceAndReports(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	total := 2000.0
	b, err := h.svc.Bookings.Create(ctx, entities.BookingInput{
		ClientName: "Alan Turing", ClientEmail: "alan@example.com",
		EventType: "corporate", EventDate: "2026-03-15", TotalAmount: &total,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := h.svc.Payments.Create(ctx, entities.PaymentInput{BookingID: b.ID, Amount: 500, Method: "card", PaidAt: "2026-03-02"}); err != nil {
		t.Fatalf("Payments.Create() error = %v", err)
	}
	if _, err := h.svc.Expenses.Create(ctx, entities.ExpenseInput{Category: "catering", Amount: 120, SpentAt: "2026-03-10"}); err != nil {
		t.Fatalf("Expenses.Create() error = %v", err)
	}

	month := MonthRange(h.clock.Now(), time.UTC)
	sum, err := h.svc.Financials.Summary(ctx, month)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.TotalIncome != 500 || sum.TotalExpenses != 120 || sum.NetProfit != 380 || sum.Outstanding != 1500 {
		t.Errorf("Summary() = %+v", sum)
	}

	payments, err := h.svc.Payments.List(ctx, b.ID)
	if err != nil {
		t.Fatalf("Payments.List() error = %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("Payments.List() = %d, want 1", len(payments))
	}

	report, err := h.svc.Reports.Revenue(ctx, month.From, month.To)
	if err != nil {
		t.Fatalf("Revenue() error = %v", err)
	}
	if len(report.Points) != 1 || report.Points[0].Month != "2026-03" {
		t.Errorf("Revenue() points = %+v", report.Points)
	}
}

func TestMessagesInbox(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.server.Store().CreateMessage(devserver.ContactInput{
		Name: "Katherine", Email: "katherine@example.com", Subject: "Spring", Body: "Is **April** free?",
	}); err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	n, err := h.svc.Messages.UnreadCount(ctx)
	if err != nil || n != 1 {
		t.Fatalf("UnreadCount() = %d, %v; want 1", n, err)
	}
	msgs, err := h.svc.Messages.List(ctx, MessageFilter{UnreadOnly: true})
	if err != nil || len(msgs) != 1 {
		t.Fatalf("List(unread) = %d, %v; want 1", len(msgs), err)
	}
	if _, err := h.svc.Messages.Reply(ctx, msgs[0].ID, "Yes it is."); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	// Reply cleared the cached count
	n, err = h.svc.Messages.UnreadCount(ctx)
	if err != nil || n != 0 {
		t.Errorf("UnreadCount() after reply = %d, %v; want 0", n, err)
	}
}

func TestUploadThroughService(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.Upload(context.Background(), "Receipt March.pdf", strings.NewReader("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(res.Filename, "receipt-march-") || !strings.HasSuffix(res.URL, res.Filename) {
		t.Errorf("Upload() = %+v", res)
	}
	if res.Size != int64(len("%PDF-1.7")) {
		t.Errorf("size = %d", res.Size)
	}
}
