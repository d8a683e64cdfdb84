package entities

import "time"

// Booking is a reservation of an event date by a client
type Booking struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name,omitempty"`
	ClientEmail string        `json:"client_email,omitempty"`
	EventType   string        `json:"event_type"`
	EventDate   string        `json:"event_date"` // YYYY-MM-DD
	StartTime   string        `json:"start_time,omitempty"`
	EndTime     string        `json:"end_time,omitempty"`
	GuestCount  int           `json:"guest_count,omitempty"`
	Status      BookingStatus `json:"status"`
	TotalAmount float64       `json:"total_amount"`
	AmountPaid  float64       `json:"amount_paid"`
	Notes       string        `json:"notes,omitempty"`
	Archived    bool          `json:"archived,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Valid reports whether s is a known status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Balance is what is still owed on the booking
func (b *Booking) Balance() float64 {
	return b.TotalAmount - b.AmountPaid
}

// BookingInput is the payload for creating or updating a booking
type BookingInput struct {
	ClientID    string        `json:"client_id,omitempty"`
	ClientName  string        `json:"client_name,omitempty"`
	ClientEmail string        `json:"client_email,omitempty"`
	ClientPhone string        `json:"client_phone,omitempty"`
	EventType   string        `json:"event_type,omitempty"`
	EventDate   string        `json:"event_date,omitempty"`
	StartTime   string        `json:"start_time,omitempty"`
	EndTime     string        `json:"end_time,omitempty"`
	GuestCount  int           `json:"guest_count,omitempty"`
	Status      BookingStatus `json:"status,omitempty"`
	TotalAmount *float64      `json:"total_amount,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}
