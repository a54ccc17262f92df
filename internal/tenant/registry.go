// Tenant registry: Store rows in the landlord database.
//
// All functions are context-aware and accept an explicit landlord *gorm.DB
// handle, making them safe for use within transactions. They follow the
// thin-repository approach: no business logic, only persistence and query
// composition.
//
// Error semantics:
//   - When no store matches, functions return ErrTenantNotFound (wrapping
//     gorm.ErrRecordNotFound); an unresolvable tenant is a normal outcome.
//   - On DB errors the raw gorm error is propagated.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// FindStoreByID fetches a store by its numeric id.
func FindStoreByID(ctx context.Context, db *gorm.DB, id uint64) (*domain.Store, error) {
	var s domain.Store
	err := db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store id %d: %w", id, ErrTenantNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindStoreBySlug fetches a store by its globally unique slug.
func FindStoreBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Store, error) {
	var s domain.Store
	err := db.WithContext(ctx).First(&s, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store slug %q: %w", slug, ErrTenantNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindStoreByHost resolves a request host to a store. An exact custom-domain
// match is tried first; when the host is a first-level subdomain of
// baseDomain, the subdomain label is matched against store slugs. Ports are
// stripped and matching is case-insensitive.
func FindStoreByHost(ctx context.Context, db *gorm.DB, host, baseDomain string) (*domain.Store, error) {
	host = NormalizeHost(host)
	if host == "" {
		return nil, fmt.Errorf("empty host: %w", ErrTenantNotFound)
	}

	var s domain.Store
	err := db.WithContext(ctx).First(&s, "custom_domain = ?", host).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if slug, ok := SubdomainOf(host, baseDomain); ok {
		return FindStoreBySlug(ctx, db, slug)
	}
	return nil, fmt.Errorf("host %q: %w", host, ErrTenantNotFound)
}

// MarkProvisioned records a completed provisioning run: database name,
// creation timestamp, and the pending→active status transition. The unique
// index on database_name enforces that a name is never assigned twice.
func MarkProvisioned(ctx context.Context, db *gorm.DB, store *domain.Store, databaseName string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]any{
			"database_name":       databaseName,
			"database_created_at": now,
			"status":              domain.StoreStatusActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store id %d: %w", store.ID, ErrTenantNotFound)
	}
	store.DatabaseName = &databaseName
	store.DatabaseCreatedAt = &now
	store.Status = domain.StoreStatusActive
	return nil
}

// MarkDeprovisioned clears the provisioning fields after teardown. The row
// itself stays; only an explicit hard delete removes it.
func MarkDeprovisioned(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	res := db.WithContext(ctx).
		Model(&domain.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]any{
			"database_name":       nil,
			"database_created_at": nil,
			"status":              domain.StoreStatusClosed,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store id %d: %w", store.ID, ErrTenantNotFound)
	}
	store.DatabaseName = nil
	store.DatabaseCreatedAt = nil
	store.Status = domain.StoreStatusClosed
	return nil
}

// NormalizeHost lowercases a request host and strips any port suffix.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}

// SubdomainOf returns the first-level label when host is exactly
// <label>.<baseDomain>. Deeper nesting does not match.
func SubdomainOf(host, baseDomain string) (string, bool) {
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))
	if baseDomain == "" {
		return "", false
	}
	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	label := strings.TrimSuffix(host, suffix)
	if label == "" || strings.Contains(label, ".") {
		return "", false
	}
	return label, true
}
