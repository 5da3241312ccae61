package permissions

// Role names a fixed bundle of permissions. The set of roles is closed;
// an unrecognised role resolves to an empty grant set.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOps      Role = "ops"
	RoleProvider Role = "provider"
	RoleCustomer Role = "customer"
)

// RoleInfo carries static display metadata for a role.
type RoleInfo struct {
	Role            Role   `json:"role"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PermissionCount int    `json:"permission_count"`
}

var roleMeta = map[Role]RoleInfo{
	RoleAdmin: {
		Role:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full access to every module and every record",
	},
	RoleOps: {
		Role:        RoleOps,
		Name:        "Operations",
		Description: "Day-to-day property, booking, and finance management",
	},
	RoleProvider: {
		Role:        RoleProvider,
		Name:        "Service Provider",
		Description: "External provider with read access and document upload",
	},
	RoleCustomer: {
		Role:        RoleCustomer,
		Name:        "Customer",
		Description: "Guest access to own bookings, invoices, and documents",
	},
}

// roleGrants is the static role → permission-set policy table. It is built
// once at init and never mutated afterwards. RoleAdmin must remain a strict
// superset of every other role; init enforces that.
var roleGrants map[Role]map[Permission]struct{}

func init() {
	roleGrants = map[Role]map[Permission]struct{}{
		RoleAdmin: grantSet(All()...),
		RoleOps: grantSet(
			PropertiesView, PropertiesCreate, PropertiesEdit,
			BookingsView, BookingsCreate, BookingsEdit, BookingsDelete,
			FinanceView, FinanceCreate, FinanceEdit,
			DocumentsView, DocumentsUpload, DocumentsDelete,
			NotificationsView, NotificationsManage,
			UsersView,
			ReportsView, ReportsExport,
		),
		RoleProvider: grantSet(
			PropertiesView,
			BookingsView,
			DocumentsView, DocumentsUpload,
			NotificationsView,
		),
		RoleCustomer: grantSet(
			BookingsView, BookingsCreate,
			FinanceView,
			DocumentsView,
			NotificationsView,
		),
	}

	for role, grants := range roleGrants {
		if len(grants) == 0 {
			panic("permissions: role " + string(role) + " has an empty grant set")
		}
		if role == RoleAdmin {
			continue
		}
		for p := range grants {
			if _, ok := roleGrants[RoleAdmin][p]; !ok {
				panic("permissions: admin is missing " + string(p) + " granted to " + string(role))
			}
		}
	}
}

func grantSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		if !Known(p) {
			panic("permissions: grant references unknown permission " + string(p))
		}
		set[p] = struct{}{}
	}
	return set
}

// Roles returns every defined role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleOps, RoleProvider, RoleCustomer}
}

// ValidRole reports whether the role is one of the defined role names.
func ValidRole(role Role) bool {
	_, ok := roleGrants[role]
	return ok
}
