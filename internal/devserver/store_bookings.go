package devserver

import (
	"sort"
	"strings"
	"time"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/idgen"
	"github.com/devilmonastery/eventdesk/internal/pkg/metrics"
	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

// BookingQuery narrows ListBookings
type BookingQuery struct {
	Search   string
	Status   entities.BookingStatus
	From     string
	To       string
	ClientID string
	Archived bool
	Limit    int
	Offset   int
}

// Clients

func (s *Store) CreateClient(in entities.ClientInput) (*entities.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createClientLocked(in)
}

func (s *Store) createClientLocked(in entities.ClientInput) (*entities.Client, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, validationError("client name and email are required")
	}
	if s.clientByEmailLocked(email) != nil {
		return nil, validationError("a client with email %s already exists", email)
	}

	now := s.now()
	c := &entities.Client{
		ID:        idgen.GenerateID(),
		Name:      name,
		Email:     email,
		Phone:     in.Phone,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.clients[c.ID] = c
	out := *c
	return &out, nil
}

func (s *Store) clientByEmailLocked(email string) *entities.Client {
	for _, c := range s.clients {
		if c.Email == email {
			return c
		}
	}
	return nil
}

func (s *Store) GetClient(id string) (*entities.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, notFound("Client")
	}
	out := *c
	out.BookingCount = s.bookingCountLocked(id)
	return &out, nil
}

// ListClients returns clients ordered by name, filtered by a case
// insensitive search over name, email and phone.
func (s *Store) ListClients(search string, limit, offset int) []entities.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]entities.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if search != "" && !containsAny(search, c.Name, c.Email, c.Phone) {
			continue
		}
		cp := *c
		cp.BookingCount = s.bookingCountLocked(c.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return paginate(out, limit, offset)
}

func (s *Store) UpdateClient(id string, in entities.ClientInput) (*entities.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, notFound("Client")
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		if other := s.clientByEmailLocked(email); other != nil && other.ID != id {
			return nil, validationError("a client with email %s already exists", email)
		}
		c.Email = email
	}
	if in.Name != "" {
		c.Name = strings.TrimSpace(in.Name)
	}
	if in.Phone != "" {
		c.Phone = in.Phone
	}
	if in.Address != "" {
		c.Address = in.Address
	}
	if in.Notes != "" {
		c.Notes = in.Notes
	}
	c.UpdatedAt = s.now()

	// Keep denormalized booking fields in step
	for _, b := range s.bookings {
		if b.ClientID == id {
			b.ClientName = c.Name
			b.ClientEmail = c.Email
		}
	}

	out := *c
	out.BookingCount = s.bookingCountLocked(id)
	return &out, nil
}

// DeleteClient removes a client that has no bookings
func (s *Store) DeleteClient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return notFound("Client")
	}
	if n := s.bookingCountLocked(id); n > 0 {
		return &apiError{
			status:  409,
			code:    "CLIENT_HAS_BOOKINGS",
			message: "Client has bookings",
			details: map[string]int{"bookings": n},
		}
	}
	delete(s.clients, id)
	return nil
}

func (s *Store) bookingCountLocked(clientID string) int {
	n := 0
	for _, b := range s.bookings {
		if b.ClientID == clientID {
			n++
		}
	}
	return n
}

// Bookings

// CreateBooking books a date. When no client id is given the client is
// looked up by email and created if missing.
func (s *Store) CreateBooking(in entities.BookingInput) (*entities.Booking, error) {
	if _, err := timeutil.ParseDate(in.EventDate, time.UTC); err != nil {
		return nil, validationError("event date must be YYYY-MM-DD")
	}
	status := in.Status
	if status == "" {
		status = entities.BookingPending
	}
	if !status.Valid() {
		return nil, validationError("unknown booking status %q", status)
	}
	if in.GuestCount < 0 {
		return nil, validationError("guest count must not be negative")
	}
	if in.TotalAmount != nil && *in.TotalAmount < 0 {
		return nil, validationError("total amount must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.BookingsEnabled {
		return nil, &apiError{status: 403, code: "BOOKINGS_DISABLED", message: "Bookings are currently disabled"}
	}
	if !s.dateAvailableLocked(in.EventDate, "") {
		return nil, dateUnavailable(in.EventDate)
	}

	client, err := s.resolveClientLocked(in)
	if err != nil {
		return nil, err
	}

	total := 0.0
	if in.TotalAmount != nil {
		total = *in.TotalAmount
	} else if price, ok := s.settings.Prices[in.EventType]; ok {
		total = price
	}

	now := s.now()
	b := &entities.Booking{
		ID:          idgen.GenerateID(),
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		EventType:   in.EventType,
		EventDate:   in.EventDate,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		GuestCount:  in.GuestCount,
		Status:      status,
		TotalAmount: total,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.bookings[b.ID] = b
	s.publishBookingCountsLocked()
	out := *b
	return &out, nil
}

func (s *Store) resolveClientLocked(in entities.BookingInput) (*entities.Client, error) {
	if in.ClientID != "" {
		c, ok := s.clients[in.ClientID]
		if !ok {
			return nil, notFound("Client")
		}
		return c, nil
	}
	email := strings.ToLower(strings.TrimSpace(in.ClientEmail))
	if c := s.clientByEmailLocked(email); c != nil && email != "" {
		return c, nil
	}
	created, err := s.createClientLocked(entities.ClientInput{
		Name:  in.ClientName,
		Email: in.ClientEmail,
		Phone: in.ClientPhone,
	})
	if err != nil {
		return nil, err
	}
	return s.clients[created.ID], nil
}

// dateAvailableLocked reports whether date has no active booking (other
// than exceptID) and is not blocked.
func (s *Store) dateAvailableLocked(date, exceptID string) bool {
	if _, blocked := s.blocked[date]; blocked {
		return false
	}
	for _, b := range s.bookings {
		if b.ID == exceptID || b.Archived || b.Status == entities.BookingCancelled {
			continue
		}
		if b.EventDate == date {
			return false
		}
	}
	return true
}

func (s *Store) GetBooking(id string) (*entities.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("Booking")
	}
	out := *b
	return &out, nil
}

// ListBookings returns bookings ordered by event date
func (s *Store) ListBookings(q BookingQuery) []entities.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]entities.Booking, 0)
	for _, b := range s.bookings {
		if b.Archived != q.Archived {
			continue
		}
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		if q.ClientID != "" && b.ClientID != q.ClientID {
			continue
		}
		if !timeutil.InRange(b.EventDate, q.From, q.To) {
			continue
		}
		if search != "" && !containsAny(search, b.ClientName, b.ClientEmail, b.EventType, b.Notes) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventDate != out[j].EventDate {
			return out[i].EventDate < out[j].EventDate
		}
		return out[i].StartTime < out[j].StartTime
	})
	return paginate(out, q.Limit, q.Offset)
}

// UpdateBooking applies the non-empty fields of in
func (s *Store) UpdateBooking(id string, in entities.BookingInput) (*entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("Booking")
	}
	if in.EventDate != "" && in.EventDate != b.EventDate {
		if _, err := timeutil.ParseDate(in.EventDate, time.UTC); err != nil {
			return nil, validationError("event date must be YYYY-MM-DD")
		}
		if !s.dateAvailableLocked(in.EventDate, id) {
			return nil, dateUnavailable(in.EventDate)
		}
		b.EventDate = in.EventDate
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, validationError("unknown booking status %q", in.Status)
		}
		b.Status = in.Status
	}
	if in.EventType != "" {
		b.EventType = in.EventType
	}
	if in.StartTime != "" {
		b.StartTime = in.StartTime
	}
	if in.EndTime != "" {
		b.EndTime = in.EndTime
	}
	if in.GuestCount > 0 {
		b.GuestCount = in.GuestCount
	}
	if in.TotalAmount != nil {
		if *in.TotalAmount < 0 {
			return nil, validationError("total amount must not be negative")
		}
		b.TotalAmount = *in.TotalAmount
	}
	if in.Notes != "" {
		b.Notes = in.Notes
	}
	b.UpdatedAt = s.now()
	s.publishBookingCountsLocked()
	out := *b
	return &out, nil
}

// SetBookingStatus moves a booking to status. Re-activating a cancelled
// booking requires its date to still be free.
func (s *Store) SetBookingStatus(id string, status entities.BookingStatus) (*entities.Booking, error) {
	if !status.Valid() {
		return nil, validationError("unknown booking status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("Booking")
	}
	if b.Status == entities.BookingCancelled && status != entities.BookingCancelled {
		if !s.dateAvailableLocked(b.EventDate, id) {
			return nil, dateUnavailable(b.EventDate)
		}
	}
	b.Status = status
	b.UpdatedAt = s.now()
	s.publishBookingCountsLocked()
	out := *b
	return &out, nil
}

// DeleteBooking removes a booking and its payments
func (s *Store) DeleteBooking(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return notFound("Booking")
	}
	delete(s.bookings, id)
	for pid, p := range s.payments {
		if p.BookingID == id {
			delete(s.payments, pid)
		}
	}
	s.publishBookingCountsLocked()
	return nil
}

// SetArchived archives or restores a booking
func (s *Store) SetArchived(id string, archived bool) (*entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("Booking")
	}
	if b.Archived == archived {
		out := *b
		return &out, nil
	}
	if !archived && b.Status != entities.BookingCancelled && !s.dateAvailableLocked(b.EventDate, id) {
		return nil, dateUnavailable(b.EventDate)
	}
	b.Archived = archived
	b.UpdatedAt = s.now()
	s.publishBookingCountsLocked()
	out := *b
	return &out, nil
}

func (s *Store) publishBookingCountsLocked() {
	counts := map[string]int{
		string(entities.BookingPending):   0,
		string(entities.BookingConfirmed): 0,
		string(entities.BookingCancelled): 0,
		string(entities.BookingCompleted): 0,
	}
	for _, b := range s.bookings {
		if !b.Archived {
			counts[string(b.Status)]++
		}
	}
	metrics.SetBookingCounts(counts)
}

// Calendar

// BlockDate marks date unavailable. A date holding an active booking
// cannot be blocked.
func (s *Store) BlockDate(date, reason string) (*entities.BlockedDate, error) {
	if _, err := timeutil.ParseDate(date, time.UTC); err != nil {
		return nil, validationError("date must be YYYY-MM-DD")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.blocked[date]; ok {
		existing.Reason = reason
		s.blocked[date] = existing
		return &existing, nil
	}
	if !s.dateAvailableLocked(date, "") {
		return nil, dateUnavailable(date)
	}
	bd := entities.BlockedDate{Date: date, Reason: reason}
	s.blocked[date] = bd
	return &bd, nil
}

func (s *Store) UnblockDate(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocked[date]; !ok {
		return notFound("Blocked date")
	}
	delete(s.blocked, date)
	return nil
}

// CalendarEvents returns active bookings and blocked dates in [from, to]
func (s *Store) CalendarEvents(from, to string) []entities.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.CalendarEvent
	for _, b := range s.bookings {
		if b.Archived || b.Status == entities.BookingCancelled {
			continue
		}
		if !timeutil.InRange(b.EventDate, from, to) {
			continue
		}
		title := b.ClientName
		if b.EventType != "" {
			title = b.EventType + ": " + b.ClientName
		}
		out = append(out, entities.CalendarEvent{
			ID:        "booking-" + b.ID,
			Date:      b.EventDate,
			Title:     title,
			Kind:      entities.CalendarKindBooking,
			BookingID: b.ID,
			Status:    b.Status,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
	}
	for date, bd := range s.blocked {
		if !timeutil.InRange(date, from, to) {
			continue
		}
		title := "Blocked"
		if bd.Reason != "" {
			title = "Blocked: " + bd.Reason
		}
		out = append(out, entities.CalendarEvent{
			ID:    "blocked-" + date,
			Date:  date,
			Title: title,
			Kind:  entities.CalendarKindBlocked,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
