// Package services – StoreService
//
// StoreService manages the store lifecycle on the landlord side: creation
// with slug normalization, provisioning and teardown of the per-store
// database (delegated to the tenant core), domain changes, and suspension.
// Every mutation that changes how a store is addressed (domain, slug,
// database) invalidates the resolver's host cache immediately, so no request
// can bind through a stale identity.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// HostInvalidator is the slice of the resolver the store service needs:
// immediate host-cache invalidation on identity changes.
type HostInvalidator interface {
	InvalidateStore(store *domain.Store, extraHosts ...string)
}

// StoreService provides store lifecycle operations.
type StoreService struct {
	// Landlord is the central platform database handle.
	Landlord *gorm.DB
	// Provisioner stands up and tears down tenant databases.
	Provisioner *tenant.Provisioner
	// Invalidator drops stale host-cache entries; may be nil in jobs that
	// run before the HTTP layer exists.
	Invalidator HostInvalidator
}

// Create inserts a new store in status pending, without a database. The
// provisioning step is explicit and separate because it may take seconds.
func (s *StoreService) Create(ctx context.Context, ownerID, name, slug string) (*domain.Store, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	store := &domain.Store{
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(name),
		Slug:     slug,
		Status:   domain.StoreStatusPending,
		IsActive: true,
	}
	if store.Name == "" {
		store.Name = slug
	}
	if err := s.Landlord.WithContext(ctx).Create(store).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return store, nil
}

// Get loads a store by id.
func (s *StoreService) Get(ctx context.Context, id uint64) (*domain.Store, error) {
	store, err := tenant.FindStoreByID(ctx, s.Landlord, id)
	if errors.Is(err, tenant.ErrTenantNotFound) {
		return nil, ErrStoreNotFound
	}
	return store, err
}

// ListPage returns a page of stores, newest first, with the total count.
func (s *StoreService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Store, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := s.Landlord.WithContext(ctx).Model(&domain.Store{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Store{}, 0, nil
	}

	var out []domain.Store
	err := s.Landlord.WithContext(ctx).
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&out).Error
	return out, total, err
}

// Provision stands up the store's tenant database. Safe to retry: an
// already-provisioned store is a no-op, and a failed run leaves the registry
// unprovisioned.
func (s *StoreService) Provision(ctx context.Context, id uint64) (*domain.Store, error) {
	store, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Provisioner.Provision(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// Suspend gates a store off without touching its data: status suspended,
// is_active off. Requests resolve to tenant-inactive afterwards.
func (s *StoreService) Suspend(ctx context.Context, id uint64) error {
	return s.setGate(ctx, id, domain.StoreStatusSuspended, false)
}

// Reactivate reopens a suspended store.
func (s *StoreService) Reactivate(ctx context.Context, id uint64) error {
	return s.setGate(ctx, id, domain.StoreStatusActive, true)
}

func (s *StoreService) setGate(ctx context.Context, id uint64, status domain.StoreStatus, active bool) error {
	store, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.Landlord.WithContext(ctx).
		Model(&domain.Store{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "is_active": active}).Error
	if err != nil {
		return err
	}
	store.Status = status
	store.IsActive = active
	s.invalidate(store)
	return nil
}

// Close soft-deletes a store: lifecycle flags flip, the row is soft-deleted,
// and the physical tenant database stays intact.
func (s *StoreService) Close(ctx context.Context, id uint64) error {
	store, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.Landlord.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Store{}).Where("id = ?", id).
			Updates(map[string]any{"status": domain.StoreStatusClosed, "is_active": false}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Store{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(store)
	return nil
}

// HardDelete tears down the store's tenant database and removes the
// registry row. The database name is never reassigned afterwards: names are
// derived from the store id, and ids are not recycled.
func (s *StoreService) HardDelete(ctx context.Context, id uint64) error {
	store, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Provisioner.Deprovision(ctx, store); err != nil {
		return err
	}
	if err := s.Landlord.WithContext(ctx).Unscoped().Delete(&domain.Store{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.invalidate(store)
	return nil
}

// UpdateCustomDomain points a store at a new custom domain (nil clears it).
// Both the old and the new host are invalidated immediately so a request to
// the old domain cannot resolve to this store even within the cache TTL.
func (s *StoreService) UpdateCustomDomain(ctx context.Context, id uint64, customDomain *string) (*domain.Store, error) {
	store, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldDomain := ""
	if store.CustomDomain != nil {
		oldDomain = *store.CustomDomain
	}

	if customDomain != nil {
		normalized := tenant.NormalizeHost(*customDomain)
		if normalized == "" {
			return nil, ErrDomainTaken
		}
		customDomain = &normalized
	}

	err = s.Landlord.WithContext(ctx).
		Model(&domain.Store{}).
		Where("id = ?", id).
		Update("custom_domain", customDomain).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDomainTaken
		}
		return nil, err
	}
	store.CustomDomain = customDomain

	if s.Invalidator != nil {
		s.Invalidator.InvalidateStore(store, oldDomain)
	}
	return store, nil
}

// StartTrial stamps the trial window on a store that has not used one yet.
func (s *StoreService) StartTrial(ctx context.Context, id uint64, days int) (*domain.Store, error) {
	store, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if store.TrialUsed || days <= 0 {
		return store, nil
	}
	ends := time.Now().UTC().AddDate(0, 0, days)
	err = s.Landlord.WithContext(ctx).
		Model(&domain.Store{}).
		Where("id = ?", id).
		Updates(map[string]any{"trial_ends_at": ends, "trial_used": true}).Error
	if err != nil {
		return nil, err
	}
	store.TrialEndsAt = &ends
	store.TrialUsed = true
	return store, nil
}

func (s *StoreService) invalidate(store *domain.Store) {
	if s.Invalidator != nil {
		s.Invalidator.InvalidateStore(store)
	}
}

// slugAllowedRE keeps URL-safe slugs: lowercase alphanumerics and dashes.
var slugAllowedRE = regexp.MustCompile(`[^a-z0-9-]+`)

// NormalizeSlug lowercases, maps whitespace and other separators to dashes,
// and trims dashes. The result is the store's URL identity; the database
// name is derived from it separately (underscored) by the tenant core.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	s = slugAllowedRE.ReplaceAllString(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// isUniqueViolation sniffs driver-specific unique-constraint failures.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate entry")
}
