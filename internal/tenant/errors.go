// Package tenant implements the tenant database resolution and
// connection-switching core: locating the store addressed by a request,
// provisioning per-store databases, and binding store-scoped connection
// handles.
//
// This file centralizes the error taxonomy of the core so callers can map
// outcomes to policy (HTTP status, retry, alerting) without string matching:
//
//   - ErrTenantNotFound:  no store matches the resolution key. A normal,
//     expected outcome (unknown host, revoked token), not a fault.
//   - ErrTenantInactive:  the store exists but is suspended/closed/inactive.
//   - ProvisioningError:  database creation, migration, or seeding failed.
//     The registry is left with database_name unset so a retry is safe.
//   - BindingError:       the tenant connection could not be (re)established.
//     Fatal for the current unit of work; the core fails closed rather than
//     continuing on a possibly-wrong connection.
package tenant

import (
	"errors"
	"fmt"
)

// ErrTenantNotFound indicates that no store matches the resolution key
// (host, token claim, or explicit id).
var ErrTenantNotFound = errors.New("tenant not found")

// ErrTenantInactive indicates that the store resolved but may not serve
// traffic (suspended, closed, or is_active flipped off).
var ErrTenantInactive = errors.New("tenant inactive")

// ProvisioningError wraps a failure during tenant database provisioning.
// Step names the phase that failed (create, migrate, seed, register) so
// operators can tell a half-created database from a registry write failure.
type ProvisioningError struct {
	StoreID uint64
	Step    string
	Err     error
}

// Error implements the error interface.
func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning store %d failed at %s: %v", e.StoreID, e.Step, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProvisioningError) Unwrap() error { return e.Err }

// BindingError wraps a failure to point a connection handle at a tenant
// database (open or ping failed). No handle is returned alongside it.
type BindingError struct {
	DatabaseName string
	Err          error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	return fmt.Sprintf("binding tenant database %q failed: %v", e.DatabaseName, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BindingError) Unwrap() error { return e.Err }
