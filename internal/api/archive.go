package api

import (
	"context"
	"net/http"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const archivePath = "/api/archive"

// ArchiveService moves past bookings out of the active views
type ArchiveService struct {
	c *client.Client
}

// List returns archived bookings
func (s *ArchiveService) List(ctx context.Context, filter ListFilter) ([]entities.Booking, error) {
	return client.Get[[]entities.Booking](ctx, s.c, archivePath, filter.values())
}

// ArchiveBooking archives one booking
func (s *ArchiveService) ArchiveBooking(ctx context.Context, id string) (*entities.Booking, error) {
	if err := requireID("booking", id); err != nil {
		return nil, err
	}
	return mutate[*entities.Booking](ctx, s.c, http.MethodPost, resourcePath(archivePath, id), nil)
}

// Restore returns an archived booking to the active views
func (s *ArchiveService) Restore(ctx context.Context, id string) (*entities.Booking, error) {
	if err := requireID("booking", id); err != nil {
		return nil, err
	}
	return mutate[*entities.Booking](ctx, s.c, http.MethodPost, resourcePath(archivePath, id, "restore"), nil)
}
