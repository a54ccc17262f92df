package tenant

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// sqliteDialector maps tenant database names onto shared in-memory sqlite
// instances, one physical store per name.
func sqliteDialector(prefix string) Dialector {
	return func(name string) gorm.Dialector {
		return sqlite.Open(fmt.Sprintf("file:%s%s?mode=memory&cache=shared", prefix, name))
	}
}

func newTestBinder(t *testing.T) *Binder {
	t.Helper()
	b := NewBinder(sqliteDialector(fmt.Sprintf("bind%d", tenantTestSeq.Add(1))), BinderOptions{
		DBPrefix:   "tenant_",
		NameSecret: "bind-test-secret",
	})
	t.Cleanup(b.Close)
	return b
}

func provisionedStore(id uint64, slug, dbName string) *domain.Store {
	return &domain.Store{
		ID:           id,
		OwnerID:      "owner-1",
		Name:         slug,
		Slug:         slug,
		DatabaseName: &dbName,
		Status:       domain.StoreStatusActive,
		IsActive:     true,
	}
}

func TestBinder_IsolationAcrossStores(t *testing.T) {
	b := newTestBinder(t)
	ctx := context.Background()

	storeA := provisionedStore(1, "store-a", "tenant_store_a")
	storeB := provisionedStore(2, "store-b", "tenant_store_b")

	tcA, err := b.Bind(ctx, storeA)
	if err != nil {
		t.Fatalf("bind A: %v", err)
	}
	tcB, err := b.Bind(ctx, storeB)
	if err != nil {
		t.Fatalf("bind B: %v", err)
	}

	for _, tc := range []*TenantContext{tcA, tcB} {
		if err := tc.DB.AutoMigrate(&domain.Product{}); err != nil {
			t.Fatalf("migrate %s: %v", tc.DatabaseName, err)
		}
	}

	if err := tcA.DB.Create(&domain.Product{ID: "p1", SKU: "SKU-1", Name: "Only in A", Currency: "EUR"}).Error; err != nil {
		t.Fatalf("create in A: %v", err)
	}

	var countA, countB int64
	if err := tcA.DB.Model(&domain.Product{}).Count(&countA).Error; err != nil {
		t.Fatalf("count A: %v", err)
	}
	if err := tcB.DB.Model(&domain.Product{}).Count(&countB).Error; err != nil {
		t.Fatalf("count B: %v", err)
	}
	if countA != 1 || countB != 0 {
		t.Fatalf("writes leaked across stores: A=%d B=%d", countA, countB)
	}

	// Switching back to A must land on A's data again.
	tcA2, err := b.Bind(ctx, storeA)
	if err != nil {
		t.Fatalf("rebind A: %v", err)
	}
	var p domain.Product
	if err := tcA2.DB.First(&p, "id = ?", "p1").Error; err != nil {
		t.Fatalf("read after switching back to A: %v", err)
	}
	if p.Name != "Only in A" {
		t.Fatalf("unexpected product after rebind: %+v", p)
	}
}

func TestBinder_ReusesHandleAndPurgeDropsIt(t *testing.T) {
	b := newTestBinder(t)
	ctx := context.Background()
	store := provisionedStore(3, "store-c", "tenant_store_c")

	tc1, err := b.Bind(ctx, store)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	tc2, err := b.Bind(ctx, store)
	if err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if tc1.DB != tc2.DB {
		t.Fatalf("expected pooled handle to be reused")
	}

	b.Purge("tenant_store_c")
	tc3, err := b.Bind(ctx, store)
	if err != nil {
		t.Fatalf("bind after purge: %v", err)
	}
	if tc3.DB == tc1.DB {
		t.Fatalf("expected a fresh handle after purge")
	}
}

func TestBinder_EffectiveDatabaseName(t *testing.T) {
	b := newTestBinder(t)

	assigned := provisionedStore(4, "store-d", "tenant_custom_name")
	if got := b.EffectiveDatabaseName(assigned); got != "tenant_custom_name" {
		t.Fatalf("assigned name ignored: %q", got)
	}

	unprovisioned := &domain.Store{ID: 4, Slug: "store-d"}
	want := DatabaseName("tenant_", "bind-test-secret", 4, "store-d")
	if got := b.EffectiveDatabaseName(unprovisioned); got != want {
		t.Fatalf("computed fallback mismatch: got %q want %q", got, want)
	}
}

func TestBinder_InvalidNameFailsClosed(t *testing.T) {
	b := newTestBinder(t)
	bad := "Bad;Name"
	store := provisionedStore(5, "store-e", bad)

	_, err := b.Bind(context.Background(), store)
	var be *BindingError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BindingError, got %v", err)
	}
	if be.DatabaseName != bad {
		t.Fatalf("BindingError names wrong database: %q", be.DatabaseName)
	}
}

func TestBinder_WithinTenant(t *testing.T) {
	b := newTestBinder(t)
	store := provisionedStore(6, "store-f", "tenant_store_f")

	var seen string
	err := b.WithinTenant(context.Background(), store, func(tc *TenantContext) error {
		seen = tc.DatabaseName
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTenant: %v", err)
	}
	if seen != "tenant_store_f" {
		t.Fatalf("fn saw wrong binding: %q", seen)
	}

	wantErr := errors.New("boom")
	if err := b.WithinTenant(context.Background(), store, func(*TenantContext) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("fn error not propagated: %v", err)
	}
}
