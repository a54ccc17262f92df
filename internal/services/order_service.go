// Package services – OrderService
//
// OrderService implements order placement and payment recording for a bound
// store. Placement runs in one transaction on the tenant handle: customer
// upsert, stock decrements, and the order insert commit or roll back
// together. Retries are deduplicated through the tenant-local idempotency
// table when the caller supplies a key.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/repo"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// OrderService provides order operations for a bound store.
type OrderService struct {
	// IdempotencyTTL bounds how long an Idempotency-Key replays the original
	// order instead of creating a new one.
	IdempotencyTTL time.Duration
}

// NewOrderService constructs an OrderService with defaults.
func NewOrderService(idempotencyTTL time.Duration) *OrderService {
	if idempotencyTTL <= 0 {
		idempotencyTTL = 24 * time.Hour
	}
	return &OrderService{IdempotencyTTL: idempotencyTTL}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Items         []OrderItemInput

	// ActorID and IdempotencyKey enable safe retries; both empty disables
	// deduplication.
	ActorID        string
	IdempotencyKey string
}

// PlaceOrderResult is the outcome of Place. Replayed reports whether the
// order was returned from a previous placement with the same key.
type PlaceOrderResult struct {
	Order    *domain.Order
	Replayed bool
}

// Place validates in, computes totals from current catalog prices and the
// store's tax setting, decrements stock, and persists the order — all
// inside one transaction on the bound tenant database.
func (s *OrderService) Place(ctx context.Context, tc *tenant.TenantContext, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	if in.CustomerEmail == "" || !strings.Contains(in.CustomerEmail, "@") {
		return nil, ErrInvalidCustomer
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	// Replay path: a still-valid record for (actor, key) short-circuits.
	if in.IdempotencyKey != "" && in.ActorID != "" {
		rec, err := repo.GetIdempotency(ctx, tc.DB, in.ActorID, in.IdempotencyKey, time.Now().UTC())
		if err == nil {
			order, err := repo.GetOrder(ctx, tc.DB, rec.OrderID)
			if err != nil {
				return nil, err
			}
			return &PlaceOrderResult{Order: order, Replayed: true}, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	taxBps := s.taxRateBps(ctx, tc)

	var placed *domain.Order
	err := tc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := repo.UpsertCustomerByEmail(ctx, tx, in.CustomerEmail, in.CustomerName, in.CustomerPhone)
		if err != nil {
			return err
		}

		order := &domain.Order{
			Number:     newOrderNumber(),
			CustomerID: customer.ID,
			Status:     domain.OrderStatusPending,
		}

		for _, it := range in.Items {
			p, err := repo.GetProduct(ctx, tx, it.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %s: %w", it.ProductID, ErrProductNotFound)
				}
				return err
			}
			if !p.IsActive {
				return fmt.Errorf("product %s: %w", p.SKU, ErrProductNotFound)
			}
			if err := repo.DecrementStock(ctx, tx, p.ID, it.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %s: %w", p.SKU, ErrOutOfStock)
				}
				return err
			}

			line := int64(it.Quantity) * p.PriceCents
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:      p.ID,
				Quantity:       it.Quantity,
				UnitPriceCents: p.PriceCents,
				TotalCents:     line,
			})
			order.SubtotalCents += line
			if order.Currency == "" {
				order.Currency = p.Currency
			}
		}

		order.TaxCents = order.SubtotalCents * taxBps / 10_000
		order.TotalCents = order.SubtotalCents + order.TaxCents

		placed, err = repo.CreateOrder(ctx, tx, order)
		if err != nil {
			return err
		}

		if in.IdempotencyKey != "" && in.ActorID != "" {
			_, err = repo.CreateIdempotency(ctx, tx, in.ActorID, in.IdempotencyKey, placed.ID, http.StatusCreated, s.IdempotencyTTL)
			// A concurrent duplicate lost the race to the same key; its order
			// already exists, ours rolls back.
			if errors.Is(err, repo.ErrDuplicate) {
				return err
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			rec, lerr := repo.GetIdempotency(ctx, tc.DB, in.ActorID, in.IdempotencyKey, time.Now().UTC())
			if lerr == nil {
				if order, gerr := repo.GetOrder(ctx, tc.DB, rec.OrderID); gerr == nil {
					return &PlaceOrderResult{Order: order, Replayed: true}, nil
				}
			}
		}
		return nil, err
	}
	return &PlaceOrderResult{Order: placed, Replayed: false}, nil
}

// Get fetches an order with items.
func (s *OrderService) Get(ctx context.Context, tc *tenant.TenantContext, id string) (*domain.Order, error) {
	o, err := repo.GetOrder(ctx, tc.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// ListPage returns a page of orders with the total count.
func (s *OrderService) ListPage(ctx context.Context, tc *tenant.TenantContext, page, pageSize int) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountOrders(ctx, tc.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}
	items, err := repo.ListOrdersPage(ctx, tc.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// RecordPayment appends a payment to an order and flips the order to paid
// once captured payments cover the total.
func (s *OrderService) RecordPayment(ctx context.Context, tc *tenant.TenantContext, orderID, method string, amountCents int64, reference string) (*domain.Payment, error) {
	switch method {
	case "card", "cash", "transfer":
	default:
		return nil, ErrInvalidPayment
	}
	if amountCents < 0 {
		return nil, ErrInvalidPayment
	}

	order, err := s.Get(ctx, tc, orderID)
	if err != nil {
		return nil, err
	}

	var payment *domain.Payment
	err = tc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err = repo.CreatePayment(ctx, tx, &domain.Payment{
			OrderID:     order.ID,
			Method:      method,
			AmountCents: amountCents,
			Status:      "captured",
			Reference:   reference,
		})
		if err != nil {
			return err
		}

		paid, err := repo.SumPaymentsForOrder(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if paid >= order.TotalCents && order.Status == domain.OrderStatusPending {
			return repo.UpdateOrderStatus(ctx, tx, order.ID, domain.OrderStatusPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// taxRateBps reads the store's tax_rate_bps setting; unset or malformed
// means zero tax.
func (s *OrderService) taxRateBps(ctx context.Context, tc *tenant.TenantContext) int64 {
	var setting domain.StoreSetting
	if err := tc.DB.WithContext(ctx).First(&setting, "`key` = ?", "tax_rate_bps").Error; err != nil {
		return 0
	}
	n, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// newOrderNumber generates a human-shareable, unique order number.
func newOrderNumber() string {
	var b [5]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().UTC().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(b[:])))
}
