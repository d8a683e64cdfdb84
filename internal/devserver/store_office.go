package devserver

import (
	"sort"
	"strings"
	"time"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/idgen"
	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

// Messages

// ContactInput is a message submitted through the public contact form
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Store) CreateMessage(in ContactInput) (*entities.Message, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, validationError("name and email are required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, validationError("message body is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := &entities.Message{
		ID:        idgen.GenerateID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     in.Phone,
		Subject:   in.Subject,
		Body:      in.Body,
		CreatedAt: s.now(),
	}
	s.messages[m.ID] = m
	out := *m
	return &out, nil
}

// ListMessages returns messages newest first
func (s *Store) ListMessages(search string, unreadOnly bool, limit, offset int) []entities.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]entities.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if unreadOnly && m.Read {
			continue
		}
		if search != "" && !containsAny(search, m.Name, m.Email, m.Subject, m.Body) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, limit, offset)
}

func (s *Store) GetMessage(id string) (*entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, notFound("Message")
	}
	out := *m
	return &out, nil
}

func (s *Store) MarkMessageRead(id string) (*entities.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, notFound("Message")
	}
	m.Read = true
	out := *m
	return &out, nil
}

// ReplyToMessage records a reply. Sending the email is out of scope for the
// dev server; the message is marked read and replied.
func (s *Store) ReplyToMessage(id, body string) (*entities.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, validationError("reply body is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, notFound("Message")
	}
	now := s.now()
	m.Read = true
	m.RepliedAt = &now
	out := *m
	return &out, nil
}

func (s *Store) DeleteMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return notFound("Message")
	}
	delete(s.messages, id)
	return nil
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if !m.Read {
			n++
		}
	}
	return n
}

// Payments

// CreatePayment records a payment and credits the booking
func (s *Store) CreatePayment(in entities.PaymentInput) (*entities.Payment, error) {
	if in.Amount <= 0 {
		return nil, validationError("payment amount must be positive")
	}
	method := in.Method
	if method == "" {
		method = "cash"
	}
	switch method {
	case "cash", "card", "transfer":
	default:
		return nil, validationError("unknown payment method %q", method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[in.BookingID]
	if !ok {
		return nil, notFound("Booking")
	}
	paidAt := in.PaidAt
	if paidAt == "" {
		paidAt = timeutil.Today(s.now(), timeutil.LoadLocation(s.settings.Timezone))
	} else if _, err := timeutil.ParseDate(paidAt, time.UTC); err != nil {
		return nil, validationError("paid_at must be YYYY-MM-DD")
	}

	p := &entities.Payment{
		ID:        idgen.GenerateID(),
		BookingID: b.ID,
		Amount:    in.Amount,
		Method:    method,
		PaidAt:    paidAt,
		Reference: in.Reference,
		CreatedAt: s.now(),
	}
	s.payments[p.ID] = p
	b.AmountPaid += p.Amount
	b.UpdatedAt = s.now()
	out := *p
	return &out, nil
}

// ListPayments returns payments ordered by date, optionally for one booking
func (s *Store) ListPayments(bookingID string) []entities.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Payment, 0)
	for _, p := range s.payments {
		if bookingID != "" && p.BookingID != bookingID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PaidAt != out[j].PaidAt {
			return out[i].PaidAt < out[j].PaidAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DeletePayment removes a payment and debits the booking
func (s *Store) DeletePayment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return notFound("Payment")
	}
	delete(s.payments, id)
	if b, ok := s.bookings[p.BookingID]; ok {
		b.AmountPaid -= p.Amount
		b.UpdatedAt = s.now()
	}
	return nil
}

// Expenses

func (s *Store) CreateExpense(in entities.ExpenseInput) (*entities.Expense, error) {
	if strings.TrimSpace(in.Category) == "" {
		return nil, validationError("expense category is required")
	}
	if in.Amount <= 0 {
		return nil, validationError("expense amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	spentAt := in.SpentAt
	if spentAt == "" {
		spentAt = timeutil.Today(s.now(), timeutil.LoadLocation(s.settings.Timezone))
	} else if _, err := timeutil.ParseDate(spentAt, time.UTC); err != nil {
		return nil, validationError("spent_at must be YYYY-MM-DD")
	}

	e := &entities.Expense{
		ID:          idgen.GenerateID(),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Description: in.Description,
		Amount:      in.Amount,
		SpentAt:     spentAt,
		ReceiptURL:  in.ReceiptURL,
		CreatedAt:   s.now(),
	}
	s.expenses[e.ID] = e
	out := *e
	return &out, nil
}

func (s *Store) ListExpenses(from, to string) []entities.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Expense, 0)
	for _, e := range s.expenses {
		if timeutil.InRange(e.SpentAt, from, to) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SpentAt != out[j].SpentAt {
			return out[i].SpentAt < out[j].SpentAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) DeleteExpense(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return notFound("Expense")
	}
	delete(s.expenses, id)
	return nil
}

// Reports

// FinancialSummary totals income and expenses in [from, to]. Outstanding is
// the unpaid balance of active bookings in the same window.
func (s *Store) FinancialSummary(from, to string) entities.FinancialSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := entities.FinancialSummary{From: from, To: to}
	for _, p := range s.payments {
		if timeutil.InRange(p.PaidAt, from, to) {
			sum.TotalIncome += p.Amount
		}
	}
	for _, e := range s.expenses {
		if timeutil.InRange(e.SpentAt, from, to) {
			sum.TotalExpenses += e.Amount
		}
	}
	for _, b := range s.bookings {
		if b.Archived || b.Status == entities.BookingCancelled {
			continue
		}
		if timeutil.InRange(b.EventDate, from, to) && b.Balance() > 0 {
			sum.Outstanding += b.Balance()
		}
	}
	sum.NetProfit = sum.TotalIncome - sum.TotalExpenses
	return sum
}

// RevenueReport groups income and expenses by month
func (s *Store) RevenueReport(from, to string) entities.RevenueReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMonth := make(map[string]*entities.RevenuePoint)
	point := func(date string) *entities.RevenuePoint {
		month := timeutil.MonthOf(date)
		p, ok := byMonth[month]
		if !ok {
			p = &entities.RevenuePoint{Month: month}
			byMonth[month] = p
		}
		return p
	}

	report := entities.RevenueReport{From: from, To: to, Points: []entities.RevenuePoint{}}
	for _, p := range s.payments {
		if timeutil.InRange(p.PaidAt, from, to) {
			point(p.PaidAt).Income += p.Amount
			report.Total += p.Amount
		}
	}
	for _, e := range s.expenses {
		if timeutil.InRange(e.SpentAt, from, to) {
			point(e.SpentAt).Expenses += e.Amount
		}
	}
	for _, p := range byMonth {
		report.Points = append(report.Points, *p)
	}
	sort.Slice(report.Points, func(i, j int) bool { return report.Points[i].Month < report.Points[j].Month })
	return report
}

// BookingReport counts non-archived bookings in [from, to]
func (s *Store) BookingReport(from, to string) entities.BookingReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := entities.BookingReport{
		From:        from,
		To:          to,
		ByStatus:    make(map[string]int),
		ByEventType: make(map[string]int),
	}
	for _, b := range s.bookings {
		if b.Archived || !timeutil.InRange(b.EventDate, from, to) {
			continue
		}
		report.ByStatus[string(b.Status)]++
		eventType := b.EventType
		if eventType == "" {
			eventType = "other"
		}
		report.ByEventType[eventType]++
		report.Total++
	}
	return report
}
