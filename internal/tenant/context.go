// TenantContext and its context.Context plumbing.
//
// The binding is an explicit value threaded through the call chain, not a
// process-global connection slot mutated in place. A unit of work (HTTP
// request, job execution) obtains a TenantContext from the resolver or
// binder at its start and passes it down; nothing is inherited from a
// previous unit of work, which removes the cross-request leakage hazard of
// an ambient "current tenant".
package tenant

import (
	"context"

	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

/// TenantContext is the result of binding: the resolved store plus a GORM
// handle that reads and writes that store's database exclusively. It is
// read-only for the remainder of the unit of work that obtained it.
type TenantContext struct {
	Store        *domain.Store
	DatabaseName string
	DB           *gorm.DB
}

// ctxKey is the private context key type for TenantContext values.
type ctxKey struct{}

// NewContext returns a copy of ctx carrying tc.
func NewContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext extracts the TenantContext bound earlier in this unit of work.
// The second return value is false when no tenant is bound; callers must
// treat that as "unresolved", never fall back to a default database.
func FromContext(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(ctxKey{}).(*TenantContext)
	return tc, ok && tc != nil
}
