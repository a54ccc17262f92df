package services

import (
	"context"
	"errors"
	"testing"
)

func TestCatalog_CreateProduct(t *testing.T) {
	tc := newBoundTenant(t)
	svc := NewCatalogService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, tc, CreateProductInput{
		SKU:        "  mug-1 ",
		Name:       "  Coffee Mug ",
		PriceCents: 900,
		Stock:      5,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.SKU != "MUG-1" || p.Name != "Coffee Mug" || p.Currency != "EUR" || !p.IsActive {
		t.Fatalf("normalization: %+v", p)
	}

	if _, err := svc.CreateProduct(ctx, tc, CreateProductInput{SKU: "mug-1", Name: "Dup", PriceCents: 1}); !errors.Is(err, ErrSKUTaken) {
		t.Fatalf("duplicate sku: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, tc, CreateProductInput{SKU: "", Name: "X", PriceCents: 1}); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("blank sku: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, tc, CreateProductInput{SKU: "N-1", Name: "X", PriceCents: -1}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative price: %v", err)
	}

	ghost := "no-such-category"
	if _, err := svc.CreateProduct(ctx, tc, CreateProductInput{SKU: "N-2", Name: "X", PriceCents: 1, CategoryID: &ghost}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("ghost category: %v", err)
	}

	cat, err := svc.CreateCategory(ctx, tc, "Drinkware", 0)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	p, err = svc.CreateProduct(ctx, tc, CreateProductInput{SKU: "N-3", Name: "X", PriceCents: 1, CategoryID: &cat.ID})
	if err != nil || p.CategoryID == nil || *p.CategoryID != cat.ID {
		t.Fatalf("categorized product: %v %+v", err, p)
	}
}

func TestCatalog_UpdateProduct(t *testing.T) {
	tc := newBoundTenant(t)
	svc := NewCatalogService()
	ctx := context.Background()
	p := seedProduct(t, tc, "MUG-1", 900, 5)

	newName := "Renamed"
	newPrice := int64(1100)
	inactive := false
	if err := svc.UpdateProduct(ctx, tc, p.ID, UpdateProductInput{
		Name:       &newName,
		PriceCents: &newPrice,
		IsActive:   &inactive,
	}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	got, err := svc.GetProduct(ctx, tc, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Name != "Renamed" || got.PriceCents != 1100 || got.IsActive {
		t.Fatalf("updates not applied: %+v", got)
	}

	blank := "  "
	if err := svc.UpdateProduct(ctx, tc, p.ID, UpdateProductInput{Name: &blank}); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("blank name: %v", err)
	}
	negative := int64(-5)
	if err := svc.UpdateProduct(ctx, tc, p.ID, UpdateProductInput{PriceCents: &negative}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative price: %v", err)
	}
	if err := svc.UpdateProduct(ctx, tc, "ghost", UpdateProductInput{Name: &newName}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product: %v", err)
	}
	// No fields set is a no-op, not an error.
	if err := svc.UpdateProduct(ctx, tc, p.ID, UpdateProductInput{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
}

func TestCatalog_DeleteAndList(t *testing.T) {
	tc := newBoundTenant(t)
	svc := NewCatalogService()
	ctx := context.Background()

	seedProduct(t, tc, "MUG-1", 900, 5)
	doomed := seedProduct(t, tc, "TEE-1", 1500, 5)

	if err := svc.DeleteProduct(ctx, tc, doomed.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if err := svc.DeleteProduct(ctx, tc, doomed.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("double delete: %v", err)
	}

	items, total, err := svc.ListProductsPage(ctx, tc, "", 1, 10)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("list after delete: %v %d %d", err, total, len(items))
	}

	items, total, err = svc.ListProductsPage(ctx, tc, "zzz", 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("filtered list: %v %d %d", err, total, len(items))
	}
}

func TestCatalog_Categories(t *testing.T) {
	tc := newBoundTenant(t)
	svc := NewCatalogService()
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, tc, "  ", 0); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("blank name: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, tc, "Drinkware", 1); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, tc, "Drinkware", 2); !errors.Is(err, ErrCategoryTaken) {
		t.Fatalf("duplicate name: %v", err)
	}

	list, err := svc.ListCategories(ctx, tc)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListCategories: %v %d", err, len(list))
	}
}
