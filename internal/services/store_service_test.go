package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/migrate"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// memoryAdmin satisfies tenant.DatabaseAdmin; sqlite memory databases come
// into existence on first open, so create/drop only need recording.
type memoryAdmin struct {
	mu      sync.Mutex
	created []string
	dropped []string
}

func (a *memoryAdmin) CreateDatabase(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.created = append(a.created, name)
	return nil
}

func (a *memoryAdmin) DropDatabase(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropped = append(a.dropped, name)
	return nil
}

// recordingInvalidator captures which stores had their host cache dropped.
type recordingInvalidator struct {
	stores []uint64
	extras [][]string
}

func (r *recordingInvalidator) InvalidateStore(store *domain.Store, extraHosts ...string) {
	r.stores = append(r.stores, store.ID)
	r.extras = append(r.extras, extraHosts)
}

func newStoreService(t *testing.T) (*StoreService, *gorm.DB, *memoryAdmin, *recordingInvalidator) {
	t.Helper()
	landlord := openMemoryDB(t, "svcland", &domain.Store{})

	seq := svcTestSeq.Add(1)
	dial := func(name string) gorm.Dialector {
		return sqlite.Open(fmt.Sprintf("file:svc%d%s?mode=memory&cache=shared", seq, name))
	}
	binder := tenant.NewBinder(dial, tenant.BinderOptions{
		DBPrefix:   "tenant_",
		NameSecret: "svc-test-secret",
	})
	t.Cleanup(binder.Close)

	admin := &memoryAdmin{}
	inv := &recordingInvalidator{}
	svc := &StoreService{
		Landlord: landlord,
		Provisioner: &tenant.Provisioner{
			Landlord: landlord,
			Admin:    admin,
			Binder:   binder,
			Migrator: migrate.TenantMigrator{},
			Seeder:   migrate.StoreSeeder{},
		},
		Invalidator: inv,
	}
	return svc, landlord, admin, inv
}

func TestStoreService_CreateAndSlugRules(t *testing.T) {
	svc, _, _, _ := newStoreService(t)
	ctx := context.Background()

	store, err := svc.Create(ctx, "owner-1", "Kaffee Nord", "Kaffee Nord")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if store.Slug != "kaffee-nord" || store.Status != domain.StoreStatusPending {
		t.Fatalf("unexpected store: %+v", store)
	}

	if _, err := svc.Create(ctx, "owner-2", "Other", "kaffee-nord"); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("duplicate slug: %v", err)
	}
	if _, err := svc.Create(ctx, "owner-2", "Bad", "***"); !errors.Is(err, ErrInvalidSlug) {
		t.Fatalf("empty slug: %v", err)
	}

	// Blank name falls back to the slug.
	store, err = svc.Create(ctx, "owner-3", "  ", "second-store")
	if err != nil || store.Name != "second-store" {
		t.Fatalf("name fallback: %v %+v", err, store)
	}
}

func TestStoreService_ProvisionLifecycle(t *testing.T) {
	svc, landlord, admin, _ := newStoreService(t)
	ctx := context.Background()

	store, err := svc.Create(ctx, "owner-1", "Shop", "shop")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Provision(ctx, store.ID); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	got, err := svc.Get(ctx, store.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Provisioned() || got.Status != domain.StoreStatusActive {
		t.Fatalf("store not active after provisioning: %+v", got)
	}
	if len(admin.created) != 1 {
		t.Fatalf("create calls: %v", admin.created)
	}

	// Retry is a no-op.
	if _, err := svc.Provision(ctx, store.ID); err != nil {
		t.Fatalf("re-provision: %v", err)
	}
	if len(admin.created) != 1 {
		t.Fatalf("re-provision created again: %v", admin.created)
	}

	// Hard delete drops the database and removes the registry row entirely.
	if err := svc.HardDelete(ctx, store.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	if len(admin.dropped) != 1 {
		t.Fatalf("drop calls: %v", admin.dropped)
	}
	var n int64
	if err := landlord.Unscoped().Model(&domain.Store{}).Where("id = ?", store.ID).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("registry row survived hard delete: %v %d", err, n)
	}
}

func TestStoreService_SuspendReactivate(t *testing.T) {
	svc, _, _, inv := newStoreService(t)
	ctx := context.Background()

	store, _ := svc.Create(ctx, "owner-1", "Shop", "shop")
	if err := svc.Suspend(ctx, store.ID); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	got, _ := svc.Get(ctx, store.ID)
	if got.AccessibleForRequests() {
		t.Fatalf("suspended store still accessible: %+v", got)
	}
	if len(inv.stores) == 0 || inv.stores[len(inv.stores)-1] != store.ID {
		t.Fatalf("suspend did not invalidate: %v", inv.stores)
	}

	if err := svc.Reactivate(ctx, store.ID); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	got, _ = svc.Get(ctx, store.ID)
	if !got.AccessibleForRequests() {
		t.Fatalf("reactivated store not accessible: %+v", got)
	}

	if err := svc.Suspend(ctx, 9999); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("missing store: %v", err)
	}
}

func TestStoreService_CloseKeepsDatabase(t *testing.T) {
	svc, landlord, admin, _ := newStoreService(t)
	ctx := context.Background()

	store, _ := svc.Create(ctx, "owner-1", "Shop", "shop")
	if _, err := svc.Provision(ctx, store.ID); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := svc.Close(ctx, store.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Soft deleted: invisible to normal lookups, row still present.
	if _, err := svc.Get(ctx, store.ID); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("closed store still resolvable: %v", err)
	}
	var kept domain.Store
	if err := landlord.Unscoped().First(&kept, "id = ?", store.ID).Error; err != nil {
		t.Fatalf("row gone after close: %v", err)
	}
	if kept.Status != domain.StoreStatusClosed || !kept.Provisioned() {
		t.Fatalf("close must keep the database assignment: %+v", kept)
	}
	if len(admin.dropped) != 0 {
		t.Fatalf("close dropped the database: %v", admin.dropped)
	}
}

func TestStoreService_UpdateCustomDomain(t *testing.T) {
	svc, _, _, inv := newStoreService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, "owner-1", "A", "store-a")
	b, _ := svc.Create(ctx, "owner-1", "B", "store-b")

	d := "Shop.Example.Com:443"
	got, err := svc.UpdateCustomDomain(ctx, a.ID, &d)
	if err != nil {
		t.Fatalf("UpdateCustomDomain: %v", err)
	}
	if got.CustomDomain == nil || *got.CustomDomain != "shop.example.com" {
		t.Fatalf("domain not normalized: %+v", got.CustomDomain)
	}

	same := "shop.example.com"
	if _, err := svc.UpdateCustomDomain(ctx, b.ID, &same); !errors.Is(err, ErrDomainTaken) {
		t.Fatalf("duplicate domain: %v", err)
	}

	// Replacing passes the old host along for invalidation.
	next := "new.example.com"
	if _, err := svc.UpdateCustomDomain(ctx, a.ID, &next); err != nil {
		t.Fatalf("replace domain: %v", err)
	}
	last := inv.extras[len(inv.extras)-1]
	if len(last) != 1 || last[0] != "shop.example.com" {
		t.Fatalf("old domain not invalidated: %v", last)
	}

	// Clearing the domain.
	got, err = svc.UpdateCustomDomain(ctx, a.ID, nil)
	if err != nil || got.CustomDomain != nil {
		t.Fatalf("clear domain: %v %+v", err, got.CustomDomain)
	}
}

func TestStoreService_StartTrial(t *testing.T) {
	svc, _, _, _ := newStoreService(t)
	ctx := context.Background()

	store, _ := svc.Create(ctx, "owner-1", "Shop", "shop")
	got, err := svc.StartTrial(ctx, store.ID, 14)
	if err != nil {
		t.Fatalf("StartTrial: %v", err)
	}
	if !got.TrialUsed || got.TrialEndsAt == nil {
		t.Fatalf("trial not stamped: %+v", got)
	}
	first := *got.TrialEndsAt

	// A second trial request does not extend the window.
	got, err = svc.StartTrial(ctx, store.ID, 30)
	if err != nil {
		t.Fatalf("second StartTrial: %v", err)
	}
	if got.TrialEndsAt == nil || !got.TrialEndsAt.Equal(first) {
		t.Fatalf("trial extended: %v vs %v", got.TrialEndsAt, first)
	}
}

func TestNormalizeSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Kaffee Nord", "kaffee-nord"},
		{"  spaced   out  ", "spaced-out"},
		{"Café!!Nörd", "caf-n-rd"},
		{"--a--b--", "a-b"},
		{"***", ""},
		{"already-fine", "already-fine"},
	}
	for _, c := range cases {
		if got := NormalizeSlug(c.in); got != c.want {
			t.Errorf("NormalizeSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
