package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/middleware"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
)

func newBookingsRouter(env *handlerEnv, identity gin.HandlerFunc) *gin.Engine {
	h := NewBookingsHandler(env.bookings)

	r := gin.New()
	api := r.Group("/api", identity)
	api.POST("/bookings", middleware.RequirePermission(permissions.BookingsCreate), h.Create)
	api.GET("/bookings", middleware.RequirePermission(permissions.BookingsView), h.List)
	api.GET("/bookings/:id", middleware.RequirePermission(permissions.BookingsView), h.Get)
	api.PATCH("/bookings/:id/status", h.UpdateStatus)
	api.DELETE("/bookings/:id", h.Delete)
	return r
}

func newBookingInput(propertyID, userID string, checkIn, checkOut time.Time) services.CreateBookingInput {
	return services.CreateBookingInput{
		PropertyID: propertyID,
		UserID:     userID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
	}
}

func stayDates(daysFromNow, nights int) (time.Time, time.Time) {
	checkIn := time.Now().UTC().AddDate(0, 0, daysFromNow).Truncate(24 * time.Hour)
	return checkIn, checkIn.AddDate(0, 0, nights)
}

func TestBookingsCreateScopedToCaller(t *testing.T) {
	env := newHandlerEnv(t)
	owner := env.createUser(t, "owner@example.com", "provider")
	guest := env.createUser(t, "guest@example.com", "customer")
	other := env.createUser(t, "other@example.com", "customer")
	property := env.createProperty(t, owner.ID, "Villa Sol")

	checkIn, checkOut := stayDates(7, 3)
	body := map[string]any{
		"property_id": property.ID,
		"user_id":     other.ID,
		"check_in":    checkIn,
		"check_out":   checkOut,
		"guests":      2,
	}

	rec := performJSON(t, newBookingsRouter(env, actAs(permissions.RoleCustomer, guest.ID)), http.MethodPost, "/api/bookings", body)
	requireStatus(t, rec, http.StatusCreated)

	var created models.Booking
	decodeData(t, rec, &created)
	require.Equal(t, guest.ID, created.UserID, "customers cannot book on behalf of others")
	require.Equal(t, models.BookingStatusPending, created.Status)
}

func TestBookingsListScopedForCustomers(t *testing.T) {
	env := newHandlerEnv(t)
	owner := env.createUser(t, "owner@example.com", "provider")
	guest := env.createUser(t, "guest@example.com", "customer")
	other := env.createUser(t, "other@example.com", "customer")
	property := env.createProperty(t, owner.ID, "Villa Sol")

	for i, userID := range []string{guest.ID, other.ID} {
		checkIn, checkOut := stayDates(7+i*10, 3)
		_, err := env.bookings.Create(context.Background(), newBookingInput(property.ID, userID, checkIn, checkOut))
		require.NoError(t, err)
	}

	rec := performJSON(t, newBookingsRouter(env, actAs(permissions.RoleCustomer, guest.ID)), http.MethodGet, "/api/bookings?user_id="+other.ID, nil)
	requireStatus(t, rec, http.StatusOK)

	var listed []models.Booking
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, guest.ID, listed[0].UserID)

	ops := env.createUser(t, "ops@example.com", "ops")
	rec = performJSON(t, newBookingsRouter(env, actAs(permissions.RoleOps, ops.ID)), http.MethodGet, "/api/bookings", nil)
	requireStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &listed)
	require.Len(t, listed, 2)
}

func TestBookingsDetailOwnershipGate(t *testing.T) {
	env := newHandlerEnv(t)
	owner := env.createUser(t, "owner@example.com", "provider")
	guest := env.createUser(t, "guest@example.com", "customer")
	other := env.createUser(t, "other@example.com", "customer")
	property := env.createProperty(t, owner.ID, "Villa Sol")

	checkIn, checkOut := stayDates(7, 3)
	booking, err := env.bookings.Create(context.Background(), newBookingInput(property.ID, guest.ID, checkIn, checkOut))
	require.NoError(t, err)

	rec := performJSON(t, newBookingsRouter(env, actAs(permissions.RoleCustomer, guest.ID)), http.MethodGet, "/api/bookings/"+booking.ID, nil)
	requireStatus(t, rec, http.StatusOK)

	rec = performJSON(t, newBookingsRouter(env, actAs(permissions.RoleCustomer, other.ID)), http.MethodGet, "/api/bookings/"+booking.ID, nil)
	requireStatus(t, rec, http.StatusForbidden)
}

func TestBookingsStatusUpdateByOps(t *testing.T) {
	env := newHandlerEnv(t)
	owner := env.createUser(t, "owner@example.com", "provider")
	guest := env.createUser(t, "guest@example.com", "customer")
	ops := env.createUser(t, "ops@example.com", "ops")
	property := env.createProperty(t, owner.ID, "Villa Sol")

	checkIn, checkOut := stayDates(7, 3)
	booking, err := env.bookings.Create(context.Background(), newBookingInput(property.ID, guest.ID, checkIn, checkOut))
	require.NoError(t, err)

	// Customers lack the edit capability even on their own booking.
	rec := performJSON(t, newBookingsRouter(env, actAs(permissions.RoleCustomer, guest.ID)), http.MethodPatch, "/api/bookings/"+booking.ID+"/status", map[string]any{"status": "confirmed"})
	requireStatus(t, rec, http.StatusForbidden)

	rec = performJSON(t, newBookingsRouter(env, actAs(permissions.RoleOps, ops.ID)), http.MethodPatch, "/api/bookings/"+booking.ID+"/status", map[string]any{"status": "confirmed"})
	requireStatus(t, rec, http.StatusOK)

	var updated models.Booking
	decodeData(t, rec, &updated)
	require.Equal(t, models.BookingStatusConfirmed, updated.Status)

	rec = performJSON(t, newBookingsRouter(env, actAs(permissions.RoleOps, ops.ID)), http.MethodPatch, "/api/bookings/"+booking.ID+"/status", map[string]any{"status": "pending"})
	requireStatus(t, rec, http.StatusBadRequest)
}
