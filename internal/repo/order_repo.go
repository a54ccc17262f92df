// Repository functions for Order, OrderItem, and Payment models.
//
// Order creation is composed by the service layer inside a transaction; the
// functions here are thin single-purpose writes and reads, following the
// same (ctx, db, ...) convention as the rest of the package.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// CreateOrder inserts an order row together with its items. Callers wrap
// this in a transaction with the stock decrements.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) (*domain.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.PlacedAt.IsZero() {
		o.PlacedAt = now
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = uuid.NewString()
		}
		o.Items[i].OrderID = o.ID
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder fetches an order with its items, or ErrNotFound.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CountOrders returns the total number of orders.
func CountOrders(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Order{}).Count(&total).Error
	return total, err
}

// ListOrdersPage returns a page of orders, most recently placed first.
func ListOrdersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Order("placed_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateOrderStatus transitions an order to status. Returns ErrNotFound
// when no row matched.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, id string, status domain.OrderStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreatePayment records a payment against an order.
func CreatePayment(ctx context.Context, db *gorm.DB, p *domain.Payment) (*domain.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = now
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// ListPaymentsForOrder returns an order's payments, oldest first.
func ListPaymentsForOrder(ctx context.Context, db *gorm.DB, orderID string) ([]domain.Payment, error) {
	var out []domain.Payment
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("paid_at asc").
		Find(&out).Error
	return out, err
}

// SumPaymentsForOrder returns the captured total for an order in cents.
func SumPaymentsForOrder(ctx context.Context, db *gorm.DB, orderID string) (int64, error) {
	var row struct {
		Total int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("COALESCE(SUM(amount_cents), 0) AS total").
		Where("order_id = ? AND status = ?", orderID, "captured").
		Scan(&row).Error
	return row.Total, err
}
