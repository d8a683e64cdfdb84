package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// BuildBookingViewURL builds a back-office URL for viewing a booking.
// Returns a URL like: {baseURL}/admin/bookings?id={bookingID}
func BuildBookingViewURL(baseURL, bookingID string) (string, error) {
	return buildAdminURL(baseURL, "bookings", bookingID)
}

// BuildMessageViewURL builds a back-office URL for viewing an inbox message.
// Returns a URL like: {baseURL}/admin/messages?id={messageID}
func BuildMessageViewURL(baseURL, messageID string) (string, error) {
	return buildAdminURL(baseURL, "messages", messageID)
}

func buildAdminURL(baseURL, section, id string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u.Path = "/admin/" + section
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// UploadURL builds the public URL of an uploaded file.
// Returns a URL like: {baseURL}/uploads/{filename}
// Ensures no double slashes by trimming trailing slash from baseURL.
func UploadURL(baseURL, filename string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	return baseURL + "/uploads/" + url.PathEscape(path.Base(filename))
}
