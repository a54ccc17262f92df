// Package services – AuthService
//
// AuthService authenticates store employees and issues the JWTs the HTTP
// layer and the tenant resolver verify. The token carries the store id it
// was issued for; that claim is what lets an authenticated request resolve
// its tenant without trusting the Host header.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/repo"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// AuthService verifies employee credentials and signs employee tokens.
type AuthService struct {
	JWTSecret []byte
	TokenTTL  time.Duration
}

// NewAuthService constructs an AuthService. A non-positive ttl defaults to
// 12 hours.
func NewAuthService(secret []byte, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{JWTSecret: secret, TokenTTL: ttl}
}

// Login verifies email/password against the bound store's employees and
// returns a signed token on success. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, tc *tenant.TenantContext, email, password string) (string, *domain.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	emp, err := repo.GetEmployeeByEmail(ctx, tc.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !emp.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := tenant.EmployeeClaims{
		StoreID:    tc.Store.ID,
		EmployeeID: emp.ID,
		Role:       emp.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", nil, err
	}
	return token, emp, nil
}

// CreateEmployee hashes the password and inserts a new employee into the
// bound store. Role must be one of owner, manager, staff.
func (s *AuthService) CreateEmployee(ctx context.Context, tc *tenant.TenantContext, email, name, role, password string) (*domain.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") || name == "" {
		return nil, ErrInvalidEmployee
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	switch role {
	case "owner", "manager", "staff":
	case "":
		role = "staff"
	default:
		return nil, ErrInvalidEmployee
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	emp, err := repo.CreateEmployee(ctx, tc.DB, email, name, role, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return emp, nil
}
