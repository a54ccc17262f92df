// Database provisioner: stands up a new tenant database end-to-end
// (create → bind → migrate → seed → register) and tears one down.
//
// Failure semantics: a failed run is not retried inline. Best-effort cleanup
// drops the partially-created database, the registry keeps database_name
// unset, and the wrapped *ProvisioningError propagates to the store-creation
// workflow, which decides whether to retry. Because database_name is only
// written after a fully successful run, a later retry can never mistake a
// half-built tenant for a healthy one.
package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// Migrator applies the full tenant schema migration set to a bound tenant
// database. Implementations must be deterministic in order and resumable:
// a partial failure leaves the database retryable, not half-migrated and
// marked healthy.
type Migrator interface {
	Run(ctx context.Context, tc *TenantContext) error
}

// Seeder inserts the baseline reference data a new store needs (default
// settings, default category, payment methods). Not idempotent by design;
// Provision invokes it exactly once per store.
type Seeder interface {
	Seed(ctx context.Context, tc *TenantContext) error
}

// DatabaseAdmin issues server-level create/drop statements. The MySQL
// implementation is SQLAdmin; tests substitute a file-backed fake.
type DatabaseAdmin interface {
	// CreateDatabase must be safe to call when the database already exists
	// (no-op, not an error) to support retry after partial failure.
	CreateDatabase(ctx context.Context, name string) error
	// DropDatabase must treat "database already gone" as success.
	DropDatabase(ctx context.Context, name string) error
}

// SQLAdmin implements DatabaseAdmin over a server-level GORM handle.
type SQLAdmin struct {
	DB *gorm.DB
}

// CreateDatabase creates name with a fixed character set and collation so
// every tenant database is byte-for-byte identically configured.
func (a SQLAdmin) CreateDatabase(ctx context.Context, name string) error {
	if !ValidDatabaseName(name) {
		return fmt.Errorf("refusing to create database with invalid name %q", name)
	}
	// Identifier validated above; MySQL cannot bind identifiers as params.
	stmt := "CREATE DATABASE IF NOT EXISTS " + name + " CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"
	return a.DB.WithContext(ctx).Exec(stmt).Error
}

// DropDatabase drops name, treating absence as success.
func (a SQLAdmin) DropDatabase(ctx context.Context, name string) error {
	if !ValidDatabaseName(name) {
		return fmt.Errorf("refusing to drop database with invalid name %q", name)
	}
	return a.DB.WithContext(ctx).Exec("DROP DATABASE IF EXISTS " + name).Error
}

// Provisioner orchestrates tenant database lifecycle. All collaborators are
// injected; nothing here talks to the network directly.
type Provisioner struct {
	Landlord *gorm.DB
	Admin    DatabaseAdmin
	Binder   *Binder
	Migrator Migrator
	Seeder   Seeder

	// Timeout caps one provisioning run (create+migrate+seed). Zero means
	// the caller's context governs alone.
	Timeout time.Duration

	Logger zerolog.Logger
}

// Provision stands up the tenant database for store. Already-provisioned
// stores are a no-op: the registry says the tenant is healthy, and seeding
// must not run twice.
func (p *Provisioner) Provision(ctx context.Context, store *domain.Store) error {
	if store.Provisioned() {
		p.Logger.Info().Uint64("store_id", store.ID).Str("database", *store.DatabaseName).
			Msg("store already provisioned")
		return nil
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	start := time.Now()
	name := p.Binder.EffectiveDatabaseName(store)
	log := p.Logger.With().Uint64("store_id", store.ID).Str("database", name).Logger()

	err := p.provision(ctx, store, name)
	if err != nil {
		provisionDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		log.Error().Err(err).Msg("provisioning failed")
		return err
	}
	provisionDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	log.Info().Dur("took", time.Since(start)).Msg("store provisioned")
	return nil
}

func (p *Provisioner) provision(ctx context.Context, store *domain.Store, name string) error {
	if err := p.Admin.CreateDatabase(ctx, name); err != nil {
		return &ProvisioningError{StoreID: store.ID, Step: "create", Err: err}
	}

	step := func(stepName string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			p.cleanup(name)
			return &ProvisioningError{StoreID: store.ID, Step: stepName, Err: err}
		}
		if err := fn(); err != nil {
			p.cleanup(name)
			return &ProvisioningError{StoreID: store.ID, Step: stepName, Err: err}
		}
		return nil
	}

	var tc *TenantContext
	if err := step("bind", func() (err error) {
		tc, err = p.Binder.Bind(ctx, store)
		return err
	}); err != nil {
		return err
	}
	if err := step("migrate", func() error { return p.Migrator.Run(ctx, tc) }); err != nil {
		return err
	}
	if err := step("seed", func() error { return p.Seeder.Seed(ctx, tc) }); err != nil {
		return err
	}
	if err := step("register", func() error { return MarkProvisioned(ctx, p.Landlord, store, name) }); err != nil {
		return err
	}
	return nil
}

// cleanup drops the partially-created database so a retry starts clean. The
/// drop runs on a background context: the caller's context may already be
// canceled, and an orphaned half-migrated database is worse than a slightly
// longer cleanup.
func (p *Provisioner) cleanup(name string) {
	p.Binder.Purge(name)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := p.Admin.DropDatabase(ctx, name); err != nil {
		p.Logger.Warn().Err(err).Str("database", name).Msg("cleanup drop failed")
	}
}

// Deprovision drops the physical database and clears the registry fields.
// A store that was never provisioned (or whose database is already gone) is
// treated as success.
func (p *Provisioner) Deprovision(ctx context.Context, store *domain.Store) error {
	if !store.Provisioned() {
		return MarkDeprovisioned(ctx, p.Landlord, store)
	}
	name := *store.DatabaseName

	p.Binder.Purge(name)
	if err := p.Admin.DropDatabase(ctx, name); err != nil {
		return &ProvisioningError{StoreID: store.ID, Step: "drop", Err: err}
	}
	if err := MarkDeprovisioned(ctx, p.Landlord, store); err != nil {
		return &ProvisioningError{StoreID: store.ID, Step: "deregister", Err: err}
	}
	p.Logger.Info().Uint64("store_id", store.ID).Str("database", name).Msg("store deprovisioned")
	return nil
}
