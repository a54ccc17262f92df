// Package services – CatalogService
//
// CatalogService manages products and categories inside one store's catalog.
// All methods take a *tenant.TenantContext obtained by the caller from the
// resolver or binder: the tenant handle is an explicit argument, never an
// ambient default, so every query in this file is scoped to exactly one
// store by construction.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/repo"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// CatalogService provides catalog operations for a bound store.
type CatalogService struct {
	// MaxNameLen caps product and category names by byte length.
	MaxNameLen int
}

// NewCatalogService constructs a CatalogService with defaults.
func NewCatalogService() *CatalogService {
	return &CatalogService{MaxNameLen: 255}
}

// CreateProductInput carries the fields for a new product.
type CreateProductInput struct {
	SKU         string
	Name        string
	Description string
	CategoryID  *string
	PriceCents  int64
	Currency    string
	Stock       int
}

// CreateProduct validates and inserts a new product into the bound store's
// catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, tc *tenant.TenantContext, in CreateProductInput) (*domain.Product, error) {
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, ErrInvalidProduct
	}
	if in.PriceCents < 0 {
		return nil, ErrInvalidPrice
	}
	if s.MaxNameLen > 0 && len(in.Name) > s.MaxNameLen {
		in.Name = in.Name[:s.MaxNameLen]
	}
	if in.Currency == "" {
		in.Currency = "EUR"
	}

	if in.CategoryID != nil {
		if _, err := repo.GetCategory(ctx, tc.DB, *in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	p := &domain.Product{
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		PriceCents:  in.PriceCents,
		Currency:    in.Currency,
		Stock:       in.Stock,
		IsActive:    true,
	}
	created, err := repo.CreateProduct(ctx, tc.DB, p)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSKUTaken
		}
		return nil, err
	}
	return created, nil
}

// GetProduct fetches one product from the bound store.
func (s *CatalogService) GetProduct(ctx context.Context, tc *tenant.TenantContext, id string) (*domain.Product, error) {
	p, err := repo.GetProduct(ctx, tc.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// ListProductsPage returns a page of the store's products with the total
// count, optionally filtered by a name substring.
func (s *CatalogService) ListProductsPage(ctx context.Context, tc *tenant.TenantContext, nameFilter string, page, pageSize int) ([]domain.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountProducts(ctx, tc.DB, nameFilter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}
	items, err := repo.ListProductsPage(ctx, tc.DB, nameFilter, (page-1)*pageSize, pageSize)
	return items, total, err
}

// UpdateProductInput carries optional product updates; nil fields are left
// unchanged.
type UpdateProductInput struct {
	Name       *string
	PriceCents *int64
	Stock      *int
	IsActive   *bool
	CategoryID *string
}

// UpdateProduct applies the non-nil fields of in to a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, tc *tenant.TenantContext, id string, in UpdateProductInput) error {
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return ErrInvalidProduct
		}
		updates["name"] = name
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return ErrInvalidPrice
		}
		updates["price_cents"] = *in.PriceCents
	}
	if in.Stock != nil {
		updates["stock"] = *in.Stock
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.CategoryID != nil {
		if _, err := repo.GetCategory(ctx, tc.DB, *in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		updates["category_id"] = *in.CategoryID
	}
	if len(updates) == 0 {
		return nil
	}

	err := repo.UpdateProduct(ctx, tc.DB, id, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return err
}

// DeleteProduct soft-deletes a product from the bound store.
func (s *CatalogService) DeleteProduct(ctx context.Context, tc *tenant.TenantContext, id string) error {
	err := repo.DeleteProduct(ctx, tc.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return err
}

// CreateCategory inserts a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, tc *tenant.TenantContext, name string, position int) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCategory
	}
	if s.MaxNameLen > 0 && len(name) > s.MaxNameLen {
		name = name[:s.MaxNameLen]
	}
	c, err := repo.CreateCategory(ctx, tc.DB, name, position)
	if err != nil && isUniqueViolation(err) {
		return nil, ErrCategoryTaken
	}
	return c, err
}

// ListCategories returns the store's categories in display order.
func (s *CatalogService) ListCategories(ctx context.Context, tc *tenant.TenantContext) ([]domain.Category, error) {
	return repo.ListCategories(ctx, tc.DB)
}
