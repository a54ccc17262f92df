// Tenant database models.
//
// Every type in this file is persisted per store, in that store's own
// database. The schema is identical across all tenant databases; no
// per-tenant drift is permitted. Queries against these models must go
// through a bound tenant connection (see internal/tenant) — never through
// the landlord handle.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products inside one store's catalog.
type Category struct {
	ID        string         `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Position  int            `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Product is a sellable item in a store's catalog.
type Product struct {
	ID         string         `json:"id"  gorm:"type:char(36);primaryKey"`
	SKU        string         `json:"sku" gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string         `json:"name" gorm:"type:varchar(255);not null;index"`
	Description string        `json:"description" gorm:"type:text"`
	CategoryID *string        `json:"category_id" gorm:"type:char(36);index"`
	PriceCents int64          `json:"price_cents" gorm:"not null;check:price_cents >= 0"`
	Currency   string         `json:"currency" gorm:"type:char(3);not null;default:'EUR'"`
	Stock      int            `json:"stock" gorm:"not null;default:0"`
	IsActive   bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	Category *Category `json:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Customer is a buyer known to one store.
type Customer struct {
	ID        string         `json:"id"    gorm:"type:char(36);primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name      string         `json:"name"  gorm:"type:varchar(255);not null"`
	Phone     string         `json:"phone" gorm:"type:varchar(32);index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customers" }

// Employee is a staff member of one store. Employee tokens carry the store
// id they were issued for; the tenant resolver trusts that claim over the
// request host.
type Employee struct {
	ID           string         `json:"id"    gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name         string         `json:"name"  gorm:"type:varchar(255);not null"`
	Role         string         `json:"role"  gorm:"type:varchar(32);not null;default:'staff';check:role IN ('owner','manager','staff')"`
	PasswordHash string         `json:"-"     gorm:"type:varchar(255);not null"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Employee.
func (Employee) TableName() string { return "employees" }

// OrderStatus enumerates the states of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Order is a customer purchase within one store.
type Order struct {
	ID            string         `json:"id"     gorm:"type:char(36);primaryKey"`
	Number        string         `json:"number" gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID    string         `json:"customer_id" gorm:"type:char(36);not null;index"`
	Status        OrderStatus    `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	SubtotalCents int64          `json:"subtotal_cents" gorm:"not null"`
	TaxCents      int64          `json:"tax_cents"      gorm:"not null;default:0"`
	TotalCents    int64          `json:"total_cents"    gorm:"not null"`
	Currency      string         `json:"currency" gorm:"type:char(3);not null;default:'EUR'"`
	PlacedAt      time.Time      `json:"placed_at" gorm:"index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Customer Customer    `json:"-" gorm:"foreignKey:CustomerID;references:ID"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderItem is a single product line inside an order. Unit price is copied
// from the product at placement time so later price changes do not rewrite
// order history.
type OrderItem struct {
	ID             string    `json:"id"       gorm:"type:char(36);primaryKey"`
	OrderID        string    `json:"order_id" gorm:"type:char(36);not null;index"`
	ProductID      string    `json:"product_id" gorm:"type:char(36);not null;index"`
	Quantity       int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPriceCents int64     `json:"unit_price_cents" gorm:"not null"`
	TotalCents     int64     `json:"total_cents" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the database table name for OrderItem.
func (OrderItem) TableName() string { return "order_items" }

// Payment records money received against an order.
type Payment struct {
	ID          string    `json:"id"       gorm:"type:char(36);primaryKey"`
	OrderID     string    `json:"order_id" gorm:"type:char(36);not null;index"`
	Method      string    `json:"method" gorm:"type:varchar(32);not null;check:method IN ('card','cash','transfer')"`
	AmountCents int64     `json:"amount_cents" gorm:"not null;check:amount_cents >= 0"`
	Status      string    `json:"status" gorm:"type:varchar(16);not null;default:'captured';check:status IN ('pending','captured','refunded')"`
	Reference   string    `json:"reference" gorm:"type:varchar(128)"`
	PaidAt      time.Time `json:"paid_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`

	Order Order `json:"-" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Payment.
func (Payment) TableName() string { return "payments" }

// StoreSetting is a key/value setting local to one store.
type StoreSetting struct {
	Key       string    `json:"key"   gorm:"type:varchar(128);primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for StoreSetting.
func (StoreSetting) TableName() string { return "store_settings" }

// TenantModels returns the tenant schema model set in migration order. The
// order is fixed: referenced tables come before referencing ones so foreign
// keys can be created in a single pass.
func TenantModels() []any {
	return []any{
		&Category{},
		&Product{},
		&Customer{},
		&Employee{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&StoreSetting{},
		&Idempotency{},
	}
}
