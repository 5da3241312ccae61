package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auditctx"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/middleware"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
)

// requestContext returns the request context enriched with actor metadata for
// audit logging, with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}

	ctx := context.Background()
	if req := c.Request; req != nil {
		ctx = req.Context()
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		return ctx
	}

	return auditctx.WithActor(ctx, auditctx.Actor{
		UserID:    userID,
		Role:      c.GetString(middleware.CtxRoleKey),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

// currentChecker returns the permission checker installed by the auth
// middleware. The zero checker denies everything, keeping handlers fail-closed
// when the middleware was skipped.
func currentChecker(c *gin.Context) *permissions.Checker {
	if checker, ok := middleware.CheckerFromContext(c); ok {
		return checker
	}
	return permissions.NewChecker("", "")
}

// managementRoles operate on all records; the remaining roles are scoped to
// records they own.
var managementRoles = map[permissions.Role]struct{}{
	permissions.RoleAdmin: {},
	permissions.RoleOps:   {},
}

// canAccessRecord gates read access to a record owned by ownerID.
func canAccessRecord(checker *permissions.Checker, permission permissions.Permission, ownerID string) bool {
	if _, ok := managementRoles[checker.Role()]; ok {
		return checker.HasPermission(permission)
	}
	return checker.CanAccessResource(ownerID, permission)
}

// canModifyRecord gates write access to a record owned by ownerID.
func canModifyRecord(checker *permissions.Checker, permission permissions.Permission, ownerID string) bool {
	if _, ok := managementRoles[checker.Role()]; ok {
		return checker.HasPermission(permission)
	}
	return checker.CanModifyResource(ownerID, permission)
}
