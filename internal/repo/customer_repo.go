// Repository functions for the Customer model.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// UpsertCustomerByEmail returns the customer with the given email, creating
// one when absent. Order placement uses this so a guest checkout and a
// returning buyer converge on one customer row.
func UpsertCustomerByEmail(ctx context.Context, db *gorm.DB, email, name, phone string) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).First(&c, "email = ?", email).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c = domain.Customer{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomer fetches a customer by ID, or ErrNotFound.
func GetCustomer(ctx context.Context, db *gorm.DB, id string) (*domain.Customer, error) {
	var c domain.Customer
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCustomers returns the total number of customers.
func CountCustomers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Customer{}).Count(&total).Error
	return total, err
}

// ListCustomersPage returns a page of customers ordered by creation time
// descending.
func ListCustomersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Customer, error) {
	var out []domain.Customer
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
