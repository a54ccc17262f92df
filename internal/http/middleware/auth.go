// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides employee authentication for store-scoped management
// routes. Tokens are the same HMAC-signed JWTs the tenant resolver consumes
// for store selection; here the claims gate WHO may act, after resolution
// already decided WHERE.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vendora/go-commerce-backend/internal/tenant"
)

const employeeRoleKey = "employeeRole"

// EmployeeIDFrom returns the authenticated employee's ID, or "" when the
// route is not behind RequireEmployee.
func EmployeeIDFrom(c *gin.Context) string {
	v, ok := c.Get(employeeIDKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// RequireEmployee authenticates the request as a store employee.
//
// The bearer token must be a valid HMAC JWT carrying EmployeeClaims, and its
// store_id claim must name the store the request resolved to. The cross
// check matters on host-resolved requests: without it, an employee of store
// A could present their valid token to store B's domain.
func RequireEmployee(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims := &tenant.EmployeeClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !tok.Valid || claims.EmployeeID == "" {
			unauthorized(c, "invalid token")
			return
		}

		if tc, ok := TenantFrom(c); ok && claims.StoreID != tc.Store.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "wrong_store",
				"message":    "token was issued for a different store",
			})
			return
		}

		c.Set(employeeIDKey, claims.EmployeeID)
		c.Set(employeeRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole allows only employees whose role claim is in the given set.
// Must run after RequireEmployee.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role, _ := c.Get(employeeRoleKey)
		if s, ok := role.(string); ok {
			if _, ok := allowed[s]; ok {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "forbidden",
			"message":    "insufficient role",
		})
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="store"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
