// Package migrate applies database schema migrations. Tenant migrations run
// as a fixed, named sequence of steps so that every tenant database is
// migrated in the same deterministic order, and a partial failure is
// resumable: each step is individually idempotent, so re-running the
// sequence after a failure converges instead of erroring or drifting.
package migrate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// Step is one named unit of the tenant schema migration sequence.
type Step struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

// TenantSteps returns the tenant schema migration sequence. Order is load
// bearing: referenced tables migrate before referencing ones.
func TenantSteps() []Step {
	group := func(models ...any) func(ctx context.Context, db *gorm.DB) error {
		return func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).AutoMigrate(models...)
		}
	}
	return []Step{
		{Name: "catalog", Run: group(&domain.Category{}, &domain.Product{})},
		{Name: "customers", Run: group(&domain.Customer{})},
		{Name: "staff", Run: group(&domain.Employee{})},
		{Name: "orders", Run: group(&domain.Order{}, &domain.OrderItem{}, &domain.Payment{})},
		{Name: "settings", Run: group(&domain.StoreSetting{}, &domain.Idempotency{})},
	}
}

// TenantMigrator implements tenant.Migrator over TenantSteps.
type TenantMigrator struct {
	Logger zerolog.Logger
}

// Run applies every step in order against the bound tenant database,
// stopping at the first failure. The failed step's name is part of the
// returned error so operators can see how far the run got.
func (m TenantMigrator) Run(ctx context.Context, tc *tenant.TenantContext) error {
	for _, step := range TenantSteps() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("tenant migration interrupted before %q: %w", step.Name, err)
		}
		if err := step.Run(ctx, tc.DB); err != nil {
			return fmt.Errorf("tenant migration step %q: %w", step.Name, err)
		}
		m.Logger.Debug().
			Str("database", tc.DatabaseName).
			Str("step", step.Name).
			Msg("tenant migration step applied")
	}
	return nil
}

// Landlord migrates the central platform schema. Invoked once at startup.
func Landlord(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(domain.LandlordModels()...); err != nil {
		return fmt.Errorf("landlord migration: %w", err)
	}
	return nil
}
