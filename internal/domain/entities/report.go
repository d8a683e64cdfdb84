package entities

// RevenuePoint is the income of one month
type RevenuePoint struct {
	Month    string  `json:"month"` // YYYY-MM
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// RevenueReport is income and expenses grouped by month
type RevenueReport struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Points []RevenuePoint `json:"points"`
	Total  float64        `json:"total"`
}

// BookingReport counts bookings by status and event type
type BookingReport struct {
	From        string         `json:"from"`
	To          string         `json:"to"`
	ByStatus    map[string]int `json:"by_status"`
	ByEventType map[string]int `json:"by_event_type"`
	Total       int            `json:"total"`
}
