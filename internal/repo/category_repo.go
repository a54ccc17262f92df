// Repository functions for the Category model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// CreateCategory inserts a new category with a generated UUID.
func CreateCategory(ctx context.Context, db *gorm.DB, name string, position int) (*domain.Category, error) {
	c := &domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns all categories ordered by position, then name.
func ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).Order("position asc, name asc").Find(&out).Error
	return out, err
}

// GetCategory fetches a category by ID, or ErrNotFound.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error) {
	var c domain.Category
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
