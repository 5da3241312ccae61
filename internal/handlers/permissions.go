package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// PermissionsHandler exposes read-only introspection over the permission
// catalogue and the caller's own grants.
type PermissionsHandler struct{}

// NewPermissionsHandler constructs a permissions handler.
func NewPermissionsHandler() *PermissionsHandler {
	return &PermissionsHandler{}
}

// GET /api/permissions/me
func (h *PermissionsHandler) Me(c *gin.Context) {
	checker := currentChecker(c)

	response.Success(c, http.StatusOK, gin.H{
		"role":        checker.RoleInfo(),
		"permissions": checker.Permissions(),
	})
}

type permissionEntry struct {
	Permission  permissions.Permission `json:"permission"`
	Description string                 `json:"description"`
}

// GET /api/permissions/catalogue
func (h *PermissionsHandler) Catalogue(c *gin.Context) {
	all := permissions.All()
	entries := make([]permissionEntry, 0, len(all))
	for _, p := range all {
		description, _ := permissions.Describe(p)
		entries = append(entries, permissionEntry{Permission: p, Description: description})
	}

	response.Success(c, http.StatusOK, entries)
}

// GET /api/permissions/roles
func (h *PermissionsHandler) Roles(c *gin.Context) {
	roles := permissions.Roles()
	infos := make([]permissions.RoleInfo, 0, len(roles))
	for _, role := range roles {
		infos = append(infos, permissions.NewChecker(role, "").RoleInfo())
	}

	response.Success(c, http.StatusOK, infos)
}
