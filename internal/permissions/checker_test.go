package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasPermissionMatchesGrantTable(t *testing.T) {
	for _, role := range Roles() {
		checker := NewChecker(role, "u1")
		granted := make(map[Permission]struct{}, len(checker.Permissions()))
		for _, p := range checker.Permissions() {
			granted[p] = struct{}{}
		}

		for _, p := range All() {
			_, want := granted[p]
			require.Equal(t, want, checker.HasPermission(p),
				"role %s permission %s", role, p)
		}
	}
}

func TestAdminIsStrictSuperset(t *testing.T) {
	admin := NewChecker(RoleAdmin, "u1")
	for _, role := range []Role{RoleOps, RoleProvider, RoleCustomer} {
		other := NewChecker(role, "u1")
		for _, p := range other.Permissions() {
			require.True(t, admin.HasPermission(p),
				"admin missing %s granted to %s", p, role)
		}
		require.Greater(t, len(admin.Permissions()), len(other.Permissions()),
			"admin grant set must be strictly larger than %s", role)
	}
}

func TestHasAllPermissionsEmptyInputIsTrue(t *testing.T) {
	checker := NewChecker(RoleCustomer, "u1")
	require.True(t, checker.HasAllPermissions(nil))
	require.True(t, checker.HasAllPermissions([]Permission{}))
}

func TestHasAnyPermissionEmptyInputIsFalse(t *testing.T) {
	checker := NewChecker(RoleAdmin, "u1")
	require.False(t, checker.HasAnyPermission(nil))
	require.False(t, checker.HasAnyPermission([]Permission{}))
}

func TestHasPermissionUnknownPermission(t *testing.T) {
	checker := NewChecker(RoleAdmin, "u1")
	require.False(t, checker.HasPermission(Permission("PROPERTIES_FLY")))
}

func TestOpsScenario(t *testing.T) {
	checker := NewChecker(RoleOps, "u1")

	require.True(t, checker.HasPermission(PropertiesEdit))
	require.False(t, checker.HasPermission(SystemSettings))
	require.False(t, checker.HasAllPermissions([]Permission{PropertiesView, PropertiesDelete}))
	require.True(t, checker.HasAnyPermission([]Permission{PropertiesView, SystemSettings}))
}

func TestCanAccessResourceOwnershipGate(t *testing.T) {
	checker := NewChecker(RoleOps, "u1")

	// Owning the resource reduces the check to the capability.
	require.Equal(t, checker.HasPermission(PropertiesView), checker.CanAccessResource("u1", PropertiesView))
	require.Equal(t, checker.HasPermission(SystemSettings), checker.CanAccessResource("u1", SystemSettings))

	// Someone else's resource is always denied for non-admins.
	require.False(t, checker.CanAccessResource("u2", PropertiesView))
	require.False(t, checker.CanAccessResource("", PropertiesView))
}

func TestCanModifyResourceCapabilityGateFailsFirst(t *testing.T) {
	checker := NewChecker(RoleCustomer, "u1")

	// Customers cannot edit bookings, so ownership alone is not enough.
	require.False(t, checker.CanModifyResource("u1", BookingsEdit))
	require.True(t, checker.CanModifyResource("u1", BookingsCreate))
}

func TestAdminBypassesOwnershipAndCapability(t *testing.T) {
	checker := NewChecker(RoleAdmin, "admin-1")

	require.True(t, checker.CanAccessResource("someone-else", PropertiesDelete))
	require.True(t, checker.CanModifyResource("someone-else", PropertiesDelete))
	// Admin wins even for a permission outside the catalogue.
	require.True(t, checker.CanAccessResource("someone-else", Permission("NOT_IN_CATALOGUE")))
}

func TestUnrecognisedRoleFailsClosed(t *testing.T) {
	checker := NewChecker(Role("superuser"), "u1")

	require.Empty(t, checker.Permissions())
	require.Equal(t, 0, checker.RoleInfo().PermissionCount)
	require.False(t, checker.HasPermission(PropertiesView))
	require.False(t, checker.CanAccessResource("u1", PropertiesView))
	require.False(t, checker.CanModifyResource("u1", PropertiesView))
	require.False(t, checker.HasAnyPermission(All()))
	require.True(t, checker.HasAllPermissions(nil))
}

func TestEmptyUserIDFailsClosedOnOwnership(t *testing.T) {
	checker := NewChecker(RoleCustomer, "")

	require.False(t, checker.CanAccessResource("", BookingsView))
	require.True(t, checker.HasPermission(BookingsView))
}

func TestRoleInfoPermissionCountMatchesPermissions(t *testing.T) {
	for _, role := range Roles() {
		checker := NewChecker(role, "u1")
		info := checker.RoleInfo()
		require.Equal(t, role, info.Role)
		require.NotEmpty(t, info.Name)
		require.Equal(t, len(checker.Permissions()), info.PermissionCount, "role %s", role)
	}
}

func TestPermissionsReturnsDefensiveCopy(t *testing.T) {
	checker := NewChecker(RoleProvider, "u1")

	first := checker.Permissions()
	first[0] = Permission("MUTATED")

	second := checker.Permissions()
	require.NotEqual(t, first[0], second[0])
	require.NotContains(t, second, Permission("MUTATED"))
}

func TestAuthorizeReturnsCheckResult(t *testing.T) {
	checker := NewChecker(RoleOps, "u1")

	require.True(t, checker.Authorize(PropertiesEdit))
	require.False(t, checker.Authorize(SystemSettings))
	require.False(t, checker.Authorize(SystemSettings, "settings are admin only"))
}
