package middleware

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/tenant"
)

const (
	// TenantHeader is the HTTP header for tenant identification.
	TenantHeader = "X-Tenant-ID"
)

// Tenant middleware resolves the tenant token from the request header.
// This middleware MUST run before any handler that touches storage: a request
// whose tenant cannot be resolved is rejected here and never reaches a
// repository.
//
// Resolution is the only way to obtain a tenant.ID, so downstream code cannot
// fabricate a scope the request did not carry.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeader)

		tid, err := tenant.Resolve(raw)
		if err != nil {
			_ = c.Error(
				apperror.NewNoTenant().
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}

		ctx := tenant.WithID(c.Request.Context(), tid)
		c.Request = c.Request.WithContext(ctx)

		// Also set in Gin context for handlers that use c.Get()
		c.Set("tenant_id", tid.String())

		c.Next()
	}
}
