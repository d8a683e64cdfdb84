// Package api exposes typed services for each back-office resource on top of
// the authenticated request pipeline in internal/client.
package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/devilmonastery/eventdesk/internal/client"
)

// Service groups the resource services sharing one client
type Service struct {
	Client *client.Client

	Bookings   *BookingService
	Clients    *ClientService
	Calendar   *CalendarService
	Messages   *MessageService
	Users      *UserService
	Payments   *PaymentService
	Expenses   *ExpenseService
	Financials *FinancialService
	Settings   *SettingsService
	Reports    *ReportService
	Archive    *ArchiveService
}

// New wires every resource service to c
func New(c *client.Client) *Service {
	return &Service{
		Client:     c,
		Bookings:   &BookingService{c: c},
		Clients:    &ClientService{c: c},
		Calendar:   &CalendarService{c: c},
		Messages:   &MessageService{c: c},
		Users:      &UserService{c: c},
		Payments:   &PaymentService{c: c},
		Expenses:   &ExpenseService{c: c},
		Financials: &FinancialService{c: c},
		Settings:   &SettingsService{c: c},
		Reports:    &ReportService{c: c},
		Archive:    &ArchiveService{c: c},
	}
}

// Upload sends a file to the upload endpoint
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*client.UploadResult, error) {
	return s.Client.Upload(ctx, "file", filename, r, nil)
}

// ListFilter holds the paging and search options shared by list endpoints
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

func (f ListFilter) values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

// DateRange limits a query to [From, To]; either bound may be empty
type DateRange struct {
	From string // YYYY-MM-DD
	To   string // YYYY-MM-DD
}

func (r DateRange) apply(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if r.From != "" {
		q.Set("from", r.From)
	}
	if r.To != "" {
		q.Set("to", r.To)
	}
	return q
}

// Deleted is the payload of delete endpoints
type Deleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// resourcePath joins a collection path and an escaped id
func resourcePath(collection, id string, rest ...string) string {
	p := collection + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func requireID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id is required", kind)
	}
	return nil
}

// mutate runs a write and drops cached reads so later GETs see the change
func mutate[T any](ctx context.Context, c *client.Client, method, endpoint string, body any) (T, error) {
	opts := []client.RequestOption{client.Method(method)}
	if body != nil {
		opts = append(opts, client.JSONBody(body))
	}
	out, err := client.Do[T](ctx, c, endpoint, opts...)
	if err != nil {
		return out, err
	}
	c.ClearCache()
	return out, nil
}
