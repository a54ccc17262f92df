// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model.
//
// All functions are context-aware and accept a *gorm.DB handle. For tenant
// entities that handle MUST come from a bound TenantContext; passing the
// landlord handle here is a cross-tenant correctness bug. Keeping the
// connection an explicit argument (instead of an ambient "current tenant")
// is what makes that rule checkable at every call site.
//
// Error semantics:
//   - When a product is not found, functions return ErrNotFound.
//   - On DB errors (constraint violations, connectivity), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// CreateProduct inserts a new product row. The ID is a generated UUID and
// CreatedAt is set to UTC.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct fetches a single product by ID, or ErrNotFound.
func GetProduct(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductBySKU fetches a single product by SKU, or ErrNotFound.
func GetProductBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CountProducts returns the total number of products, optionally filtered
// by a name substring.
func CountProducts(ctx context.Context, db *gorm.DB, nameFilter string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Product{})
	if nameFilter != "" {
		q = q.Where("name LIKE ?", "%"+nameFilter+"%")
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListProductsPage returns a page of products ordered by name, optionally
// filtered by a name substring. The caller computes offset and limit.
func ListProductsPage(ctx context.Context, db *gorm.DB, nameFilter string, offset, limit int) ([]domain.Product, error) {
	q := db.WithContext(ctx).Model(&domain.Product{})
	if nameFilter != "" {
		q = q.Where("name LIKE ?", "%"+nameFilter+"%")
	}
	var out []domain.Product
	err := q.Order("name asc").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// UpdateProduct applies the given column updates to a product. Returns
// ErrNotFound when no row matched.
func UpdateProduct(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProduct soft-deletes a product. Returns ErrNotFound when no row
// matched.
func DeleteProduct(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock atomically reduces a product's stock by qty, refusing to go
// negative. Returns ErrNotFound when the product is missing or stock is
// insufficient; callers run this inside the order-placement transaction and
// translate a miss into an out-of-stock error.
func DecrementStock(ctx context.Context, db *gorm.DB, id string, qty int) error {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
