package realtime

import "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"

// Named realtime streams used across the platform.
const (
	StreamNotifications = "notifications"
	StreamBookings      = "bookings"
	StreamProperties    = "properties"
	StreamFinance       = "finance"
)

// streamGates maps each stream to the permission required to subscribe.
var streamGates = map[string]permissions.Permission{
	StreamNotifications: permissions.NotificationsView,
	StreamBookings:      permissions.BookingsView,
	StreamProperties:    permissions.PropertiesView,
	StreamFinance:       permissions.FinanceView,
}

// AllowedStreams returns the set of streams the checker's role may subscribe
// to. The result is suitable for Hub.Serve's allowed parameter.
func AllowedStreams(checker *permissions.Checker) map[string]struct{} {
	if checker == nil {
		return map[string]struct{}{}
	}

	allowed := make(map[string]struct{}, len(streamGates))
	for stream, permission := range streamGates {
		if checker.HasPermission(permission) {
			allowed[stream] = struct{}{}
		}
	}
	return allowed
}
