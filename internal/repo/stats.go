// Aggregate/statistics queries for a store's dashboard. Each function is
// context-aware and runs against a bound tenant handle.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// StoreStats is a snapshot of one store's headline numbers.
type StoreStats struct {
	Products     int64 `json:"products"`
	Customers    int64 `json:"customers"`
	Orders       int64 `json:"orders"`
	RevenueCents int64 `json:"revenue_cents"`
}

// TenantStats computes counts and captured revenue for the bound store
// since the given time (zero time means all-time). It executes four
// lightweight queries; callers wanting degraded-on-failure behavior wrap it
// (see services.StatsService).
func TenantStats(ctx context.Context, db *gorm.DB, since time.Time) (StoreStats, error) {
	var s StoreStats

	if err := db.WithContext(ctx).Model(&domain.Product{}).Count(&s.Products).Error; err != nil {
		return StoreStats{}, err
	}
	if err := db.WithContext(ctx).Model(&domain.Customer{}).Count(&s.Customers).Error; err != nil {
		return StoreStats{}, err
	}

	orders := db.WithContext(ctx).Model(&domain.Order{})
	if !since.IsZero() {
		orders = orders.Where("placed_at >= ?", since)
	}
	if err := orders.Count(&s.Orders).Error; err != nil {
		return StoreStats{}, err
	}

	payments := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("COALESCE(SUM(amount_cents), 0) AS total").
		Where("status = ?", "captured")
	if !since.IsZero() {
		payments = payments.Where("paid_at >= ?", since)
	}
	var row struct {
		Total int64
	}
	if err := payments.Scan(&row).Error; err != nil {
		return StoreStats{}, err
	}
	s.RevenueCents = row.Total
	return s, nil
}
