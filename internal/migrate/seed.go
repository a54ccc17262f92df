// Baseline seeding for freshly provisioned tenant databases.
package migrate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// defaultSettings are the store settings every new tenant starts with. The
// store_name value is filled from the registry record at seed time.
var defaultSettings = map[string]string{
	"currency":        "EUR",
	"timezone":        "UTC",
	"orders_per_page": "25",
	"tax_rate_bps":    "0",
	"payment_methods": "card,cash,transfer",
}

// StoreSeeder implements tenant.Seeder. Seeding is intentionally not
// idempotent: it inserts primary-keyed rows and is invoked exactly once per
// store, by the provisioner, immediately after migration.
type StoreSeeder struct{}

// Seed inserts the baseline reference data a store needs to function:
// default settings and a default catalog category.
func (StoreSeeder) Seed(ctx context.Context, tc *tenant.TenantContext) error {
	now := time.Now().UTC()

	settings := make([]domain.StoreSetting, 0, len(defaultSettings)+1)
	settings = append(settings, domain.StoreSetting{Key: "store_name", Value: tc.Store.Name, UpdatedAt: now})
	for k, v := range defaultSettings {
		settings = append(settings, domain.StoreSetting{Key: k, Value: v, UpdatedAt: now})
	}
	if err := tc.DB.WithContext(ctx).Create(&settings).Error; err != nil {
		return err
	}

	general := domain.Category{
		ID:        uuid.NewString(),
		Name:      "General",
		Position:  0,
		CreatedAt: now,
	}
	return tc.DB.WithContext(ctx).Create(&general).Error
}
