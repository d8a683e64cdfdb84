package entities

// CalendarEvent is one entry on the back-office calendar: a booking or a
// date blocked by staff.
type CalendarEvent struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"` // YYYY-MM-DD
	Title     string        `json:"title"`
	Kind      string        `json:"kind"` // "booking" or "blocked"
	BookingID string        `json:"booking_id,omitempty"`
	Status    BookingStatus `json:"status,omitempty"`
	StartTime string        `json:"start_time,omitempty"`
	EndTime   string        `json:"end_time,omitempty"`
}

const (
	CalendarKindBooking = "booking"
	CalendarKindBlocked = "blocked"
)

// BlockedDate marks a date as unavailable for booking
type BlockedDate struct {
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}
