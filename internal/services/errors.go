// Package services defines the business logic for stores, catalogs, orders,
// and dashboard statistics. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// Store-related errors.
var (
	// ErrStoreNotFound indicates that the requested store does not exist.
	ErrStoreNotFound = errors.New("store not found")

	// ErrSlugTaken is returned when a store slug is already in use.
	ErrSlugTaken = errors.New("store slug already taken")

	// ErrInvalidSlug is returned when a store slug normalizes to nothing
	// usable (empty, or no legal characters).
	ErrInvalidSlug = errors.New("invalid store slug")

	// ErrDomainTaken is returned when a custom domain is already claimed by
	// another store.
	ErrDomainTaken = errors.New("custom domain already taken")
)

// Catalog-related errors.
var (
	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrCategoryNotFound indicates that the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSKUTaken is returned when a product SKU is already in use.
	ErrSKUTaken = errors.New("sku already taken")

	// ErrInvalidProduct is returned when product fields fail validation
	// (blank sku/name).
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidCategory is returned when category fields fail validation
	// (blank name).
	ErrInvalidCategory = errors.New("invalid category")

	// ErrCategoryTaken is returned when a category name already exists in
	// this store.
	ErrCategoryTaken = errors.New("category name already taken")

	// ErrInvalidPrice is returned when a price is negative.
	ErrInvalidPrice = errors.New("price must be >= 0")
)

// Auth-related errors.
var (
	// ErrInvalidCredentials is returned on any login failure. Unknown email,
	// wrong password and deactivated accounts all map here.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidEmployee is returned when employee fields fail validation
	// (blank name, malformed email, unknown role).
	ErrInvalidEmployee = errors.New("invalid employee")

	// ErrWeakPassword is returned when a new password is shorter than the
	// minimum length.
	ErrWeakPassword = errors.New("password too short")

	// ErrEmailTaken is returned when an employee email already exists in
	// this store.
	ErrEmailTaken = errors.New("employee email already taken")
)

// Order-related errors.
var (
	// ErrOrderNotFound indicates that the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrEmptyOrder is returned when an order is placed without items.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrOutOfStock is returned when a requested quantity exceeds the
	// available stock of a product.
	ErrOutOfStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned when an item quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be > 0")

	// ErrInvalidCustomer is returned when the buyer email is missing or
	// obviously malformed.
	ErrInvalidCustomer = errors.New("invalid customer email")

	// ErrInvalidPayment is returned when a payment amount is negative or the
	// method is unknown.
	ErrInvalidPayment = errors.New("invalid payment")
)
