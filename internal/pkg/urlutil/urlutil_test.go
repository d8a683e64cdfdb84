package urlutil

import (
	"net/url"
	"testing"
)

func TestBuildBookingViewURL(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		bookingID string
		want      string
		wantErr   bool
	}{
		{
			name:      "basic URL",
			baseURL:   "https://venue.example.com",
			bookingID: "1839201928374",
			want:      "https://venue.example.com/admin/bookings?id=1839201928374",
		},
		{
			name:      "base path is replaced",
			baseURL:   "http://localhost:4153/api",
			bookingID: "42",
			want:      "http://localhost:4153/admin/bookings?id=42",
		},
		{
			name:      "invalid base",
			baseURL:   "://bad",
			bookingID: "1",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildBookingViewURL(tt.baseURL, tt.bookingID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildBookingViewURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BuildBookingViewURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildMessageViewURL(t *testing.T) {
	got, err := BuildMessageViewURL("https://venue.example.com", "m 1")
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("BuildMessageViewURL() returned invalid URL: %v", err)
	}
	if u.Path != "/admin/messages" || u.Query().Get("id") != "m 1" {
		t.Errorf("BuildMessageViewURL() = %v", got)
	}
}

func TestUploadURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		filename string
		want     string
	}{
		{"plain", "http://localhost:4153", "floor-plan.pdf", "http://localhost:4153/uploads/floor-plan.pdf"},
		{"trailing slash", "http://localhost:4153/", "a.png", "http://localhost:4153/uploads/a.png"},
		{"directories stripped", "http://localhost:4153", "../../etc/passwd", "http://localhost:4153/uploads/passwd"},
		{"escaped", "http://localhost:4153", "my file.png", "http://localhost:4153/uploads/my%20file.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UploadURL(tt.baseURL, tt.filename); got != tt.want {
				t.Errorf("UploadURL() = %v, want %v", got, tt.want)
			}
		})
	}
}
