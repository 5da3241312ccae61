package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// BookingsHandler exposes reservation endpoints. Customers see their own
// bookings; management roles see everything.
type BookingsHandler struct {
	bookings *services.BookingService
}

// NewBookingsHandler constructs a bookings handler.
func NewBookingsHandler(bookings *services.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

type createBookingRequest struct {
	PropertyID string    `json:"property_id" validate:"required"`
	UserID     string    `json:"user_id"`
	CheckIn    time.Time `json:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" validate:"required"`
	Guests     int       `json:"guests"`
	Notes      string    `json:"notes"`
}

// POST /api/bookings
func (h *BookingsHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if !bindAndValidate(c, &req) {
		return
	}

	checker := currentChecker(c)
	userID := req.UserID
	if _, management := managementRoles[checker.Role()]; !management {
		userID = checker.UserID()
	}
	if userID == "" {
		userID = checker.UserID()
	}

	booking, err := h.bookings.Create(requestContext(c), services.CreateBookingInput{
		PropertyID: req.PropertyID,
		UserID:     userID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
		Notes:      req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, booking)
}

// GET /api/bookings
func (h *BookingsHandler) List(c *gin.Context) {
	checker := currentChecker(c)
	opts := services.ListBookingsOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Filters: services.BookingFilters{
			PropertyID: c.Query("property_id"),
			UserID:     c.Query("user_id"),
			Status:     c.Query("status"),
		},
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		opts.Filters.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		opts.Filters.To = &to
	}
	if _, management := managementRoles[checker.Role()]; !management {
		opts.Filters.UserID = checker.UserID()
	}

	bookings, total, err := h.bookings.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, bookings, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/bookings/:id
func (h *BookingsHandler) Get(c *gin.Context) {
	booking, err := h.bookings.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canAccessRecord(currentChecker(c), permissions.BookingsView, booking.UserID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

type updateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /api/bookings/:id/status
func (h *BookingsHandler) UpdateStatus(c *gin.Context) {
	var req updateBookingStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	booking, err := h.bookings.GetByID(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canModifyRecord(currentChecker(c), permissions.BookingsEdit, booking.UserID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	updated, err := h.bookings.UpdateStatus(ctx, booking.ID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

type updateBookingNotesRequest struct {
	Notes string `json:"notes"`
}

// PATCH /api/bookings/:id/notes
func (h *BookingsHandler) UpdateNotes(c *gin.Context) {
	var req updateBookingNotesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	booking, err := h.bookings.GetByID(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canModifyRecord(currentChecker(c), permissions.BookingsEdit, booking.UserID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	updated, err := h.bookings.UpdateNotes(ctx, booking.ID, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// DELETE /api/bookings/:id
func (h *BookingsHandler) Delete(c *gin.Context) {
	ctx := requestContext(c)
	booking, err := h.bookings.GetByID(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canModifyRecord(currentChecker(c), permissions.BookingsDelete, booking.UserID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	if err := h.bookings.Delete(ctx, booking.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
