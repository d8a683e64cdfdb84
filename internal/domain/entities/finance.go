package entities

import "time"

// Payment is money received against a booking
type Payment struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"` // cash, card, transfer
	PaidAt    string    `json:"paid_at"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Expense is money spent running the venue
type Expense struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	SpentAt     string    `json:"spent_at"`
	ReceiptURL  string    `json:"receipt_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FinancialSummary aggregates payments and expenses over a period
type FinancialSummary struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	Outstanding   float64 `json:"outstanding"`
}

// PaymentInput is the payload for recording a payment
type PaymentInput struct {
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	PaidAt    string  `json:"paid_at,omitempty"`
	Reference string  `json:"reference,omitempty"`
}

// ExpenseInput is the payload for recording an expense
type ExpenseInput struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	SpentAt     string  `json:"spent_at,omitempty"`
	ReceiptURL  string  `json:"receipt_url,omitempty"`
}
