// Package domain defines the persistence models for the platform. The types
// in this file belong to the landlord database: the single central database
// holding platform-wide entities (owners, stores, billing plans,
// subscriptions, platform settings). Per-store operational data lives in the
// tenant models (see tenant.go) and is persisted in each store's own
// database.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// StoreStatus enumerates the lifecycle states of a store.
type StoreStatus string

const (
	StoreStatusPending   StoreStatus = "pending"
	StoreStatusActive    StoreStatus = "active"
	StoreStatusSuspended StoreStatus = "suspended"
	StoreStatusClosed    StoreStatus = "closed"
)

// IsValid reports whether s is one of the known store statuses.
func (s StoreStatus) IsValid() bool {
	switch s {
	case StoreStatusPending, StoreStatusActive, StoreStatusSuspended, StoreStatusClosed:
		return true
	}
	return false
}

// Owner is a platform account that owns one or more stores.
type Owner struct {
	ID           string         `json:"id"    gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name         string         `json:"name"  gorm:"type:varchar(255);not null"`
	PasswordHash string         `json:"-"     gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Owner.
func (Owner) TableName() string { return "owners" }

// Store is the tenant registry record. It is the source of truth for
// "does this store have a database, and where".
//
// Provisioning state:
//   - DatabaseName is nil until the store's database has been provisioned.
//     Once assigned it is unique across all stores and is never reused, even
//     after the store is deleted.
//   - DatabaseCreatedAt records when provisioning completed.
//
// Lifecycle:
//   - Status tracks pending → active → suspended/closed transitions.
//   - IsActive is an independent gate flipped by billing/admin tooling.
//   - Soft delete (DeletedAt) keeps the physical tenant database intact;
//     only an explicit hard delete triggers database teardown.
type Store struct {
	ID                uint64         `json:"id"            gorm:"primaryKey;autoIncrement"`
	OwnerID           string         `json:"owner_id"      gorm:"type:char(36);not null;index"`
	Name              string         `json:"name"          gorm:"type:varchar(255);not null"`
	Slug              string         `json:"slug"          gorm:"type:varchar(100);not null;uniqueIndex"`
	CustomDomain      *string        `json:"custom_domain" gorm:"type:varchar(255);uniqueIndex"`
	DatabaseName      *string        `json:"-"             gorm:"type:varchar(64);uniqueIndex"`
	DatabaseCreatedAt *time.Time     `json:"-"`
	Status            StoreStatus    `json:"status"    gorm:"type:varchar(16);not null;default:'pending'"`
	IsActive          bool           `json:"is_active" gorm:"not null;default:true"`
	TrialEndsAt       *time.Time     `json:"trial_ends_at"`
	TrialUsed         bool           `json:"trial_used" gorm:"not null;default:false"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	Owner Owner `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
}

// TableName returns the database table name for Store.
func (Store) TableName() string { return "stores" }

// Provisioned reports whether the store has a tenant database assigned.
func (s *Store) Provisioned() bool {
	return s.DatabaseName != nil && *s.DatabaseName != ""
}

// AccessibleForRequests reports whether request traffic may be served for
// this store. The HTTP layer decides the user-facing consequence (403 vs
// 404); this is only the registry-level gate.
func (s *Store) AccessibleForRequests() bool {
	return s.IsActive && s.Status == StoreStatusActive
}

// Plan is a billing plan offered by the platform.
type Plan struct {
	ID             string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Code           string    `json:"code"  gorm:"type:varchar(64);not null;uniqueIndex"`
	Name           string    `json:"name"  gorm:"type:varchar(255);not null"`
	PriceCents     int64     `json:"price_cents" gorm:"not null"`
	Currency       string    `json:"currency"    gorm:"type:char(3);not null;default:'EUR'"`
	BillingPeriod  string    `json:"billing_period" gorm:"type:varchar(16);not null;default:'monthly';check:billing_period IN ('monthly','yearly')"`
	MaxProducts    int       `json:"max_products"  gorm:"not null;default:0"`
	MaxEmployees   int       `json:"max_employees" gorm:"not null;default:0"`
	TrialDays      int       `json:"trial_days"    gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Plan.
func (Plan) TableName() string { return "plans" }

// Subscription links a store to a billing plan. Billing lifecycle logic
// (renewal, payment collection) is handled by an upstream collaborator; this
// record only carries the state needed for access-control decisions.
type Subscription struct {
	ID               string     `json:"id"       gorm:"type:char(36);primaryKey"`
	StoreID          uint64     `json:"store_id" gorm:"not null;index"`
	PlanID           string     `json:"plan_id"  gorm:"type:char(36);not null;index"`
	Status           string     `json:"status"   gorm:"type:varchar(16);not null;default:'active';check:status IN ('active','past_due','canceled')"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	CanceledAt       *time.Time `json:"canceled_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Store Store `json:"-" gorm:"foreignKey:StoreID;references:ID"`
	Plan  Plan  `json:"-" gorm:"foreignKey:PlanID;references:ID"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// PlatformSetting is a key/value setting global to the platform.
type PlatformSetting struct {
	Key       string    `json:"key"   gorm:"type:varchar(128);primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for PlatformSetting.
func (PlatformSetting) TableName() string { return "platform_settings" }

// LandlordModels returns the ordered model set migrated into the landlord
// database at startup.
func LandlordModels() []any {
	return []any{
		&Owner{},
		&Store{},
		&Plan{},
		&Subscription{},
		&PlatformSetting{},
	}
}
