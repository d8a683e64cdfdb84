package auth

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// UserContext contains authenticated user information
type UserContext struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// IsAdmin reports whether the user holds the admin role
func (u *UserContext) IsAdmin() bool {
	return u.Role == "admin"
}

// contextKey is the key for storing user info in context
type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// SetUserInContext stores the authenticated user in the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireAdmin checks that the user in ctx is an admin
func RequireAdmin(ctx context.Context) error {
	user, err := GetUserFromContext(ctx)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanModifyUser checks if the caller may edit the target account.
// Admins can edit anyone; staff only themselves.
func CanModifyUser(ctx context.Context, targetUserID string) error {
	user, err := GetUserFromContext(ctx)
	if err != nil {
		return err
	}
	if user.IsAdmin() || user.UserID == targetUserID {
		return nil
	}
	return ErrForbidden
}
