package permissions

import "sort"

// Permission identifies a single capability in the form RESOURCE_ACTION.
// The catalogue is closed: every permission the application understands is
// declared here, and adding one is a deploy-time change.
type Permission string

const (
	PropertiesView   Permission = "PROPERTIES_VIEW"
	PropertiesCreate Permission = "PROPERTIES_CREATE"
	PropertiesEdit   Permission = "PROPERTIES_EDIT"
	PropertiesDelete Permission = "PROPERTIES_DELETE"

	BookingsView   Permission = "BOOKINGS_VIEW"
	BookingsCreate Permission = "BOOKINGS_CREATE"
	BookingsEdit   Permission = "BOOKINGS_EDIT"
	BookingsDelete Permission = "BOOKINGS_DELETE"

	FinanceView   Permission = "FINANCE_VIEW"
	FinanceCreate Permission = "FINANCE_CREATE"
	FinanceEdit   Permission = "FINANCE_EDIT"
	FinanceDelete Permission = "FINANCE_DELETE"

	DocumentsView   Permission = "DOCUMENTS_VIEW"
	DocumentsUpload Permission = "DOCUMENTS_UPLOAD"
	DocumentsDelete Permission = "DOCUMENTS_DELETE"

	NotificationsView   Permission = "NOTIFICATIONS_VIEW"
	NotificationsManage Permission = "NOTIFICATIONS_MANAGE"

	UsersView   Permission = "USERS_VIEW"
	UsersCreate Permission = "USERS_CREATE"
	UsersEdit   Permission = "USERS_EDIT"
	UsersDelete Permission = "USERS_DELETE"

	ReportsView   Permission = "REPORTS_VIEW"
	ReportsExport Permission = "REPORTS_EXPORT"

	SystemSettings Permission = "SYSTEM_SETTINGS"
)

// catalogue maps every known permission to its human-readable description.
var catalogue = map[Permission]string{
	PropertiesView:   "View properties and unit details",
	PropertiesCreate: "Create new properties",
	PropertiesEdit:   "Edit existing properties",
	PropertiesDelete: "Delete properties",

	BookingsView:   "View bookings and availability",
	BookingsCreate: "Create bookings",
	BookingsEdit:   "Edit existing bookings",
	BookingsDelete: "Cancel and delete bookings",

	FinanceView:   "View invoices and expenses",
	FinanceCreate: "Create invoices and expenses",
	FinanceEdit:   "Edit invoices and expenses",
	FinanceDelete: "Delete invoices and expenses",

	DocumentsView:   "View and download documents",
	DocumentsUpload: "Upload documents",
	DocumentsDelete: "Delete documents",

	NotificationsView:   "View in-app notifications",
	NotificationsManage: "Manage and broadcast notifications",

	UsersView:   "View user accounts",
	UsersCreate: "Create user accounts",
	UsersEdit:   "Edit user accounts",
	UsersDelete: "Delete user accounts",

	ReportsView:   "View occupancy and finance reports",
	ReportsExport: "Export report data",

	SystemSettings: "Manage system settings",
}

// Known reports whether the permission is part of the catalogue.
func Known(p Permission) bool {
	_, ok := catalogue[p]
	return ok
}

// Describe returns the description for a catalogued permission.
func Describe(p Permission) (string, bool) {
	desc, ok := catalogue[p]
	return desc, ok
}

// All returns every catalogued permission in lexical order.
func All() []Permission {
	out := make([]Permission, 0, len(catalogue))
	for p := range catalogue {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
