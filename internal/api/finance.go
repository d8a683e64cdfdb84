package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const (
	paymentsPath   = "/api/payments"
	expensesPath   = "/api/expenses"
	financialsPath = "/api/financials/summary"
)

// PaymentService records money received
type PaymentService struct {
	c *client.Client
}

// List returns payments, limited to one booking when bookingID is set
func (s *PaymentService) List(ctx context.Context, bookingID string) ([]entities.Payment, error) {
	q := url.Values{}
	if bookingID != "" {
		q.Set("booking_id", bookingID)
	}
	return client.Get[[]entities.Payment](ctx, s.c, paymentsPath, q)
}

func (s *PaymentService) Create(ctx context.Context, in entities.PaymentInput) (*entities.Payment, error) {
	if in.BookingID == "" {
		return nil, fmt.Errorf("booking id is required")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	return mutate[*entities.Payment](ctx, s.c, http.MethodPost, paymentsPath, in)
}

func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if err := requireID("payment", id); err != nil {
		return err
	}
	_, err := mutate[*Deleted](ctx, s.c, http.MethodDelete, resourcePath(paymentsPath, id), nil)
	return err
}

// ExpenseService records money spent
type ExpenseService struct {
	c *client.Client
}

func (s *ExpenseService) List(ctx context.Context, r DateRange) ([]entities.Expense, error) {
	return client.Get[[]entities.Expense](ctx, s.c, expensesPath, r.apply(nil))
}

func (s *ExpenseService) Create(ctx context.Context, in entities.ExpenseInput) (*entities.Expense, error) {
	if in.Category == "" {
		return nil, fmt.Errorf("expense category is required")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("expense amount must be positive")
	}
	return mutate[*entities.Expense](ctx, s.c, http.MethodPost, expensesPath, in)
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := requireID("expense", id); err != nil {
		return err
	}
	_, err := mutate[*Deleted](ctx, s.c, http.MethodDelete, resourcePath(expensesPath, id), nil)
	return err
}

// FinancialService reports income against expenses
type FinancialService struct {
	c *client.Client
}

// Summary totals payments, expenses and outstanding balances over r
func (s *FinancialService) Summary(ctx context.Context, r DateRange) (*entities.FinancialSummary, error) {
	return client.Get[*entities.FinancialSummary](ctx, s.c, financialsPath, r.apply(nil))
}
