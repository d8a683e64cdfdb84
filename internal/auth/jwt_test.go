package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager("test-signing-key-0123456789", 15*time.Minute, nil)

	token, expiresAt, err := m.GenerateToken("u1", "owner@example.com", "Owner", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expiresAt) <= 14*time.Minute {
		t.Errorf("expiresAt = %v, want ~15m from now", expiresAt)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "owner@example.com" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no jti")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewJWTManager("test-signing-key-0123456789", time.Minute, clock)

	token, _, err := m.GenerateToken("u1", "a@b.c", "", "staff")
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken after expiry = %v, want ErrExpiredToken", err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	m := NewJWTManager("test-signing-key-0123456789", time.Minute, nil)
	other := NewJWTManager("another-signing-key-987654", time.Minute, nil)

	foreign, _, err := other.GenerateToken("u1", "a@b.c", "", "staff")
	if err != nil {
		t.Fatal(err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong key", foreign},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestGenerateTokenIDUnique(t *testing.T) {
	a, err := GenerateTokenID()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateTokenID()
	if a == b || len(a) < 40 {
		t.Errorf("token ids %q / %q", a, b)
	}
}

func TestAuthorization(t *testing.T) {
	ctx := context.Background()
	if err := RequireAdmin(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("RequireAdmin(no user) = %v", err)
	}

	staff := SetUserInContext(ctx, &UserContext{UserID: "s1", Role: "staff"})
	admin := SetUserInContext(ctx, &UserContext{UserID: "a1", Role: "admin"})

	tests := []struct {
		name   string
		ctx    context.Context
		target string
		want   error
	}{
		{"staff edits self", staff, "s1", nil},
		{"staff edits other", staff, "a1", ErrForbidden},
		{"admin edits other", admin, "s1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanModifyUser(tt.ctx, tt.target); !errors.Is(err, tt.want) {
				t.Errorf("CanModifyUser() = %v, want %v", err, tt.want)
			}
		})
	}

	if err := RequireAdmin(staff); !errors.Is(err, ErrForbidden) {
		t.Errorf("RequireAdmin(staff) = %v", err)
	}
	if err := RequireAdmin(admin); err != nil {
		t.Errorf("RequireAdmin(admin) = %v", err)
	}
}
