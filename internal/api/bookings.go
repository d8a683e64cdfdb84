package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const bookingsPath = "/api/bookings"

// BookingFilter narrows a booking listing
type BookingFilter struct {
	ListFilter
	DateRange
	Status entities.BookingStatus
}

// BookingService manages bookings
type BookingService struct {
	c *client.Client
}

// List returns bookings matching filter
func (s *BookingService) List(ctx context.Context, filter BookingFilter) ([]entities.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("unknown booking status %q", filter.Status)
	}
	q := filter.DateRange.apply(filter.ListFilter.values())
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	return client.Get[[]entities.Booking](ctx, s.c, bookingsPath, q)
}

// Get returns one booking
func (s *BookingService) Get(ctx context.Context, id string) (*entities.Booking, error) {
	if err := requireID("booking", id); err != nil {
		return nil, err
	}
	return client.Get[*entities.Booking](ctx, s.c, resourcePath(bookingsPath, id), nil)
}

// Create books a date for a client
func (s *BookingService) Create(ctx context.Context, in entities.BookingInput) (*entities.Booking, error) {
	if strings.TrimSpace(in.EventDate) == "" {
		return nil, fmt.Errorf("event date is required")
	}
	if in.ClientID == "" && strings.TrimSpace(in.ClientName) == "" {
		return nil, fmt.Errorf("client id or client name is required")
	}
	return mutate[*entities.Booking](ctx, s.c, http.MethodPost, bookingsPath, in)
}

// Update replaces the editable fields of a booking
func (s *BookingService) Update(ctx context.Context, id string, in entities.BookingInput) (*entities.Booking, error) {
	if err := requireID("booking", id); err != nil {
		return nil, err
	}
	return mutate[*entities.Booking](ctx, s.c, http.MethodPut, resourcePath(bookingsPath, id), in)
}

// UpdateStatus moves a booking to status
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error) {
	if err := requireID("booking", id); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown booking status %q", status)
	}
	body := map[string]entities.BookingStatus{"status": status}
	return mutate[*entities.Booking](ctx, s.c, http.MethodPatch, resourcePath(bookingsPath, id, "status"), body)
}

// Delete removes a booking
func (s *BookingService) Delete(ctx context.Context, id string) error {
	if err := requireID("booking", id); err != nil {
		return err
	}
	_, err := mutate[*Deleted](ctx, s.c, http.MethodDelete, resourcePath(bookingsPath, id), nil)
	return err
}
