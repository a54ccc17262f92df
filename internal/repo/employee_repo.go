// Repository functions for the Employee model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// GetEmployeeByEmail fetches an employee by email, or ErrNotFound.
func GetEmployeeByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Employee, error) {
	var e domain.Employee
	if err := db.WithContext(ctx).First(&e, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEmployee inserts a new employee. The caller supplies the password
// hash; plaintext never reaches this layer.
func CreateEmployee(ctx context.Context, db *gorm.DB, email, name, role, passwordHash string) (*domain.Employee, error) {
	e := &domain.Employee{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListEmployees returns all employees of the store ordered by creation time.
func ListEmployees(ctx context.Context, db *gorm.DB) ([]domain.Employee, error) {
	var out []domain.Employee
	err := db.WithContext(ctx).Order("created_at asc").Find(&out).Error
	return out, err
}
