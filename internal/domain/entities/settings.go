package entities

// Settings are the venue-wide options edited from the back office
type Settings struct {
	BusinessName    string             `json:"business_name"`
	ContactEmail    string             `json:"contact_email"`
	ContactPhone    string             `json:"contact_phone,omitempty"`
	Timezone        string             `json:"timezone"`
	Currency        string             `json:"currency"`
	DepositPercent  float64            `json:"deposit_percent"`
	EventTypes      []string           `json:"event_types,omitempty"`
	Prices          map[string]float64 `json:"prices,omitempty"`
	BookingsEnabled bool               `json:"bookings_enabled"`
}
