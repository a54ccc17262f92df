// Package domain defines the persistence models for the platform.
package domain

import "time"

// Idempotency records the result of a previously processed order-placement
// request, keyed by (actor_id, key). It lives in the tenant database, so
// keys are naturally scoped per store. It enables safe retries for POST
// operations by returning the originally created order without re-executing
// side effects (stock decrement, payment capture).
type Idempotency struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	ActorID   string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_actor_key,priority:1"`
	Key       string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_actor_key,priority:2"`
	OrderID   string    `gorm:"type:char(36);not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	ExpiresAt time.Time `gorm:"index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency_keys" }
