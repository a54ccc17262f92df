package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/repo"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

var svcTestSeq atomic.Int64

func openMemoryDB(t *testing.T, prefix string, models ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s%d?mode=memory&cache=shared", prefix, svcTestSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newBoundTenant builds a tenant context over a fresh tenant-schema database.
func newBoundTenant(t *testing.T) *tenant.TenantContext {
	t.Helper()
	db := openMemoryDB(t, "svctenant", domain.TenantModels()...)
	return &tenant.TenantContext{
		Store:        &domain.Store{ID: 1, Name: "Test Store", Slug: "test-store"},
		DatabaseName: "svc_test",
		DB:           db,
	}
}

func setSetting(t *testing.T, tc *tenant.TenantContext, key, value string) {
	t.Helper()
	s := domain.StoreSetting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := tc.DB.Save(&s).Error; err != nil {
		t.Fatalf("set setting %s: %v", key, err)
	}
}

func seedProduct(t *testing.T, tc *tenant.TenantContext, sku string, price int64, stock int) *domain.Product {
	t.Helper()
	p, err := repo.CreateProduct(context.Background(), tc.DB, &domain.Product{
		SKU:        sku,
		Name:       "Product " + sku,
		PriceCents: price,
		Currency:   "EUR",
		Stock:      stock,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", sku, err)
	}
	return p
}
