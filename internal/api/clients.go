package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const clientsPath = "/api/clients"

// ClientService manages the venue's customers
type ClientService struct {
	c *client.Client
}

func (s *ClientService) List(ctx context.Context, filter ListFilter) ([]entities.Client, error) {
	return client.Get[[]entities.Client](ctx, s.c, clientsPath, filter.values())
}

func (s *ClientService) Get(ctx context.Context, id string) (*entities.Client, error) {
	if err := requireID("client", id); err != nil {
		return nil, err
	}
	return client.Get[*entities.Client](ctx, s.c, resourcePath(clientsPath, id), nil)
}

func (s *ClientService) Create(ctx context.Context, in entities.ClientInput) (*entities.Client, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("client name and email are required")
	}
	return mutate[*entities.Client](ctx, s.c, http.MethodPost, clientsPath, in)
}

func (s *ClientService) Update(ctx context.Context, id string, in entities.ClientInput) (*entities.Client, error) {
	if err := requireID("client", id); err != nil {
		return nil, err
	}
	return mutate[*entities.Client](ctx, s.c, http.MethodPut, resourcePath(clientsPath, id), in)
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := requireID("client", id); err != nil {
		return err
	}
	_, err := mutate[*Deleted](ctx, s.c, http.MethodDelete, resourcePath(clientsPath, id), nil)
	return err
}

// Bookings lists every booking of one client
func (s *ClientService) Bookings(ctx context.Context, id string) ([]entities.Booking, error) {
	if err := requireID("client", id); err != nil {
		return nil, err
	}
	return client.Get[[]entities.Booking](ctx, s.c, resourcePath(clientsPath, id, "bookings"), nil)
}
