package repo

import (
	"context"
	"testing"
	"time"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

func TestTenantStats(t *testing.T) {
	db := newTenantDB(t)
	ctx := context.Background()

	seedProduct(t, db, "MUG-1", "Mug", 900, 5)
	seedProduct(t, db, "TEE-1", "T-Shirt", 1500, 5)
	cust, _ := UpsertCustomerByEmail(ctx, db, "buyer@example.com", "Buyer", "")

	old := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	oldOrder, _ := CreateOrder(ctx, db, &domain.Order{
		Number: "ORD-0001", CustomerID: cust.ID, TotalCents: 900, Currency: "EUR", PlacedAt: old,
	})
	newOrder, _ := CreateOrder(ctx, db, &domain.Order{
		Number: "ORD-0002", CustomerID: cust.ID, TotalCents: 1500, Currency: "EUR", PlacedAt: recent,
	})
	if _, err := CreatePayment(ctx, db, &domain.Payment{
		OrderID: oldOrder.ID, Method: "card", AmountCents: 900, Status: "captured", PaidAt: old,
	}); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if _, err := CreatePayment(ctx, db, &domain.Payment{
		OrderID: newOrder.ID, Method: "card", AmountCents: 1500, Status: "captured", PaidAt: recent,
	}); err != nil {
		t.Fatalf("payment: %v", err)
	}
	// Refunded money never counts as revenue.
	if _, err := CreatePayment(ctx, db, &domain.Payment{
		OrderID: newOrder.ID, Method: "card", AmountCents: 400, Status: "refunded", PaidAt: recent,
	}); err != nil {
		t.Fatalf("payment: %v", err)
	}

	t.Run("all time", func(t *testing.T) {
		s, err := TenantStats(ctx, db, time.Time{})
		if err != nil {
			t.Fatalf("TenantStats: %v", err)
		}
		want := StoreStats{Products: 2, Customers: 1, Orders: 2, RevenueCents: 2400}
		if s != want {
			t.Fatalf("stats = %+v, want %+v", s, want)
		}
	})

	t.Run("since cutoff", func(t *testing.T) {
		s, err := TenantStats(ctx, db, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("TenantStats: %v", err)
		}
		if s.Orders != 1 || s.RevenueCents != 1500 {
			t.Fatalf("windowed stats = %+v", s)
		}
		// Product and customer counts are not windowed.
		if s.Products != 2 || s.Customers != 1 {
			t.Fatalf("counts should ignore window: %+v", s)
		}
	})
}
