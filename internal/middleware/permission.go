package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/metrics"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// RequirePermission rejects the request unless the authenticated user's role
// grants the provided permission.
func RequirePermission(permission permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		checker, ok := CheckerFromContext(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !checker.Authorize(permission) {
			metrics.PermissionChecks.WithLabelValues(string(permission), "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(string(permission), "allowed").Inc()
		c.Next()
	}
}

// RequireAnyPermission passes when the role grants at least one of the listed
// permissions. An empty list never passes.
func RequireAnyPermission(perms ...permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		checker, ok := CheckerFromContext(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !checker.HasAnyPermission(perms) {
			for _, p := range perms {
				metrics.PermissionChecks.WithLabelValues(string(p), "denied").Inc()
			}
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
