package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vendora/go-commerce-backend/internal/tenant"
)

func TestAuth_CreateEmployeeAndLogin(t *testing.T) {
	tc := newBoundTenant(t)
	tc.Store.ID = 42
	svc := NewAuthService([]byte("auth-test-secret"), time.Hour)
	ctx := context.Background()

	emp, err := svc.CreateEmployee(ctx, tc, "Owner@Example.com", "Owner", "owner", "correct horse")
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if emp.Email != "owner@example.com" || emp.Role != "owner" {
		t.Fatalf("unexpected employee: %+v", emp)
	}
	if emp.PasswordHash == "correct horse" {
		t.Fatal("password stored in plaintext")
	}

	token, got, err := svc.Login(ctx, tc, "  OWNER@example.com ", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != emp.ID {
		t.Fatalf("wrong employee: %+v", got)
	}

	// The token must carry the bound store's id for the resolver.
	claims := &tenant.EmployeeClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("auth-test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims.StoreID != 42 || claims.EmployeeID != emp.ID || claims.Role != "owner" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Fatalf("bad expiry: %v", claims.ExpiresAt)
	}
}

func TestAuth_LoginFailures(t *testing.T) {
	tc := newBoundTenant(t)
	svc := NewAuthService([]byte("auth-test-secret"), time.Hour)
	ctx := context.Background()

	emp, err := svc.CreateEmployee(ctx, tc, "staff@example.com", "Staff", "", "long enough password")
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if emp.Role != "staff" {
		t.Fatalf("empty role should default to staff: %q", emp.Role)
	}

	cases := []struct {
		name            string
		email, password string
	}{
		{"unknown email", "ghost@example.com", "long enough password"},
		{"wrong password", "staff@example.com", "wrong password!!"},
		{"blank password", "staff@example.com", ""},
		{"blank email", "", "long enough password"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, err := svc.Login(ctx, tc, c.email, c.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	t.Run("inactive employee", func(t *testing.T) {
		if err := tc.DB.Model(emp).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		if _, _, err := svc.Login(ctx, tc, "staff@example.com", "long enough password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuth_CreateEmployeeValidation(t *testing.T) {
	tc := newBoundTenant(t)
	svc := NewAuthService([]byte("auth-test-secret"), time.Hour)
	ctx := context.Background()

	if _, err := svc.CreateEmployee(ctx, tc, "not-an-email", "X", "staff", "long enough"); !errors.Is(err, ErrInvalidEmployee) {
		t.Fatalf("bad email: %v", err)
	}
	if _, err := svc.CreateEmployee(ctx, tc, "a@example.com", "  ", "staff", "long enough"); !errors.Is(err, ErrInvalidEmployee) {
		t.Fatalf("blank name: %v", err)
	}
	if _, err := svc.CreateEmployee(ctx, tc, "a@example.com", "X", "superadmin", "long enough"); !errors.Is(err, ErrInvalidEmployee) {
		t.Fatalf("bad role: %v", err)
	}
	if _, err := svc.CreateEmployee(ctx, tc, "a@example.com", "X", "staff", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("short password: %v", err)
	}

	if _, err := svc.CreateEmployee(ctx, tc, "a@example.com", "X", "staff", "long enough"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateEmployee(ctx, tc, "A@Example.com", "Y", "staff", "long enough"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email: %v", err)
	}
}
