package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_CreateAndGet(t *testing.T) {
	db := newTenantDB(t)
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, "emp:e1", "k-1", "order-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.OrderID != "order-1" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "emp:e1", "k-1", time.Now().UTC())
	if err != nil || got.OrderID != "order-1" {
		t.Fatalf("GetIdempotency: %v %+v", err, got)
	}

	// Same key under a different actor is a distinct record.
	if _, err := GetIdempotency(ctx, db, "emp:e2", "k-1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-actor lookup: %v", err)
	}
}

func TestIdempotency_DuplicateKey(t *testing.T) {
	db := newTenantDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "emp:e1", "k-1", "order-1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "emp:e1", "k-1", "order-2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Different actor may reuse the key.
	if _, err := CreateIdempotency(ctx, db, "emp:e2", "k-1", "order-3", 201, time.Hour); err != nil {
		t.Fatalf("other actor create: %v", err)
	}
}

func TestIdempotency_ExpiredAndBlank(t *testing.T) {
	db := newTenantDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "emp:e1", "k-old", "order-1", 201, time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Ask as of a time past the record's expiry.
	future := time.Now().UTC().Add(2 * time.Minute)
	if _, err := GetIdempotency(ctx, db, "emp:e1", "k-old", future); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record returned: %v", err)
	}

	if _, err := GetIdempotency(ctx, db, "emp:e1", "  ", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank key: %v", err)
	}
}
