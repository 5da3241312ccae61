package permissions

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/logger"
)

// Checker answers permission and ownership queries for a single identity.
// It is an immutable value: construct one per authenticated identity and
// discard it when the identity changes. Every query is fail-closed — an
// unrecognised role, unknown permission, or empty user id yields false,
// never an error. Permission checks sit on security-critical paths; a check
// that could fail with an error invites callers to catch and allow.
type Checker struct {
	role   Role
	userID string
}

// NewChecker builds a checker for the supplied role and user id. No
// validation happens here: an unrecognised role simply resolves to an empty
// grant set at query time.
func NewChecker(role Role, userID string) *Checker {
	return &Checker{role: role, userID: userID}
}

// Role returns the role the checker was constructed with.
func (c *Checker) Role() Role {
	return c.role
}

// UserID returns the user identifier the checker was constructed with.
func (c *Checker) UserID() string {
	return c.userID
}

// HasPermission reports whether the checker's role grants the permission.
func (c *Checker) HasPermission(p Permission) bool {
	grants, ok := roleGrants[c.role]
	if !ok {
		return false
	}
	_, ok = grants[p]
	return ok
}

// HasAllPermissions reports whether every supplied permission is granted.
// An empty input is vacuously true.
func (c *Checker) HasAllPermissions(perms []Permission) bool {
	for _, p := range perms {
		if !c.HasPermission(p) {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether at least one supplied permission is
// granted. An empty input is false.
func (c *Checker) HasAnyPermission(perms []Permission) bool {
	for _, p := range perms {
		if c.HasPermission(p) {
			return true
		}
	}
	return false
}

// CanAccessResource reports whether the identity may read the resource owned
// by resourceOwnerID. Admins bypass both the capability and the ownership
// gate. Everyone else needs the permission and must own the resource.
func (c *Checker) CanAccessResource(resourceOwnerID string, p Permission) bool {
	if c.role == RoleAdmin {
		return true
	}
	return c.HasPermission(p) && resourceOwnerID == c.userID && c.userID != ""
}

// CanModifyResource reports whether the identity may change the resource
// owned by resourceOwnerID. The algorithm matches CanAccessResource today;
// the operations stay separate so call sites keep their read/write intent
// and the policies can diverge later.
func (c *Checker) CanModifyResource(resourceOwnerID string, p Permission) bool {
	if c.role == RoleAdmin {
		return true
	}
	return c.HasPermission(p) && resourceOwnerID == c.userID && c.userID != ""
}

// Permissions returns the full grant set for the checker's role as a sorted
// copy; mutating the result never alters the role grants.
func (c *Checker) Permissions() []Permission {
	grants := roleGrants[c.role]
	out := make([]Permission, 0, len(grants))
	for p := range grants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleInfo returns display metadata for the checker's role. Unrecognised
// roles yield zero-valued metadata with a permission count of zero.
func (c *Checker) RoleInfo() RoleInfo {
	info, ok := roleMeta[c.role]
	if !ok {
		return RoleInfo{Role: c.role}
	}
	info.PermissionCount = len(roleGrants[c.role])
	return info
}

// Authorize evaluates HasPermission and, on denial, emits a single
// diagnostic log line carrying customMessage when supplied. It has no other
// side effect; acting on the result is the caller's job.
func (c *Checker) Authorize(p Permission, customMessage ...string) bool {
	if c.HasPermission(p) {
		return true
	}

	msg := "Access denied: missing permission \"" + string(p) + "\""
	if len(customMessage) > 0 && customMessage[0] != "" {
		msg = customMessage[0]
	}

	logger.WithModule("permissions").Warn(msg,
		zap.String("role", string(c.role)),
		zap.String("user_id", c.userID),
		zap.String("permission", string(p)),
	)
	return false
}
