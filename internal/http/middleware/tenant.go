// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file attaches tenant resolution to the request pipeline. Every route
// under the store-scoped API group passes through TenantResolution, which
// determines the addressed store (token claim, then host) and binds its
// database connection BEFORE any handler runs. Handlers never see an
// unresolved request: they either receive a ready TenantContext or the
// request was already rejected with a precise status.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// Context keys under which tenant identity is stashed for logging and
// downstream handlers.
const (
	tenantCtxKey  = "tenantCtx"
	storeSlugKey  = "storeSlug"
	employeeIDKey = "employeeID"
)

// TenantFrom returns the bound TenantContext for the current request. The
// second return value is false on routes outside the tenant group.
func TenantFrom(c *gin.Context) (*tenant.TenantContext, bool) {
	v, ok := c.Get(tenantCtxKey)
	if !ok {
		return nil, false
	}
	tc, ok := v.(*tenant.TenantContext)
	return tc, ok && tc != nil
}

// BearerToken extracts a bearer token from the Authorization header. Returns
// the empty string when the header is absent or not a Bearer scheme.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// TenantResolution resolves the request to a store and binds its database.
//
// Behavior:
//   - Builds a resolution request from the bearer token (if any) and the
//     Host header, in that precedence order.
//   - On success, stashes the TenantContext in the Gin context and threads
//     it through the request's context.Context so service code reachable
//     only via context still finds it.
//   - Failure mapping: unresolvable or unknown store → 404, suspended or
//     closed store → 403, tenant database unreachable → 503. The 404 for
//     unknown hosts is deliberate: probing requests learn nothing about
//     which slugs exist.
func TenantResolution(resolver *tenant.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, err := resolver.Resolve(c.Request.Context(), tenant.ResolveRequest{
			Host:  c.Request.Host,
			Token: BearerToken(c),
		})
		if err != nil {
			rid := c.Writer.Header().Get(requestIDHeader)
			var be *tenant.BindingError
			switch {
			case errors.Is(err, tenant.ErrTenantInactive):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"request_id": rid,
					"code":       "tenant_inactive",
					"message":    "store is not accepting requests",
				})
			case errors.As(err, &be):
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"request_id": rid,
					"code":       "tenant_unavailable",
					"message":    "store database unavailable",
				})
			default:
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"request_id": rid,
					"code":       "tenant_not_found",
					"message":    "store not found",
				})
			}
			return
		}

		c.Set(tenantCtxKey, tc)
		c.Set(storeSlugKey, tc.Store.Slug)
		c.Request = c.Request.WithContext(tenant.NewContext(c.Request.Context(), tc))
		c.Next()
	}
}
