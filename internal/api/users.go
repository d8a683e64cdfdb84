package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

const usersPath = "/api/users"

// UserService manages back-office accounts. Every call requires an admin.
type UserService struct {
	c *client.Client
}

func (s *UserService) List(ctx context.Context) ([]entities.User, error) {
	return client.Get[[]entities.User](ctx, s.c, usersPath, nil)
}

func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	return client.Get[*entities.User](ctx, s.c, resourcePath(usersPath, id), nil)
}

func (s *UserService) Create(ctx context.Context, in entities.UserInput) (*entities.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if in.Role != "" && in.Role != entities.RoleStaff && in.Role != entities.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}
	return mutate[*entities.User](ctx, s.c, http.MethodPost, usersPath, in)
}

func (s *UserService) Update(ctx context.Context, id string, in entities.UserInput) (*entities.User, error) {
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	return mutate[*entities.User](ctx, s.c, http.MethodPut, resourcePath(usersPath, id), in)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := requireID("user", id); err != nil {
		return err
	}
	_, err := mutate[*Deleted](ctx, s.c, http.MethodDelete, resourcePath(usersPath, id), nil)
	return err
}
