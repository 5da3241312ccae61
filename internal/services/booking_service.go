package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/realtime"
	apperrors "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
)

var (
	// ErrBookingNotFound indicates the requested booking does not exist.
	ErrBookingNotFound = apperrors.New("BOOKING_NOT_FOUND", "Booking not found", http.StatusNotFound)
	// ErrBookingOverlap rejects confirmed bookings whose dates collide on the same property.
	ErrBookingOverlap = apperrors.New("BOOKING_OVERLAP", "Property is already booked for the requested dates", http.StatusConflict)
)

// bookingTransitions lists the allowed status moves.
var bookingTransitions = map[string][]string{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCompleted, models.BookingStatusCancelled},
	models.BookingStatusCancelled: {},
	models.BookingStatusCompleted: {},
}

// CreateBookingInput describes attributes for creating a reservation.
type CreateBookingInput struct {
	PropertyID string
	UserID     string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	Notes      string
}

// BookingFilters captures listing filters.
type BookingFilters struct {
	PropertyID string
	UserID     string
	Status     string
	From       *time.Time
	To         *time.Time
}

// ListBookingsOptions controls pagination for booking listing.
type ListBookingsOptions struct {
	Page     int
	PageSize int
	Filters  BookingFilters
}

// BookingService manages reservation lifecycle and date conflicts.
type BookingService struct {
	db           *gorm.DB
	hub          *realtime.Hub
	auditService *AuditService
}

// NewBookingService constructs a BookingService instance.
func NewBookingService(db *gorm.DB, hub *realtime.Hub, auditService *AuditService) (*BookingService, error) {
	if db == nil {
		return nil, errors.New("booking service: db is required")
	}
	return &BookingService{db: db, hub: hub, auditService: auditService}, nil
}

// Create places a new pending booking after validating dates and guests.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	propertyID := strings.TrimSpace(input.PropertyID)
	if propertyID == "" {
		return nil, apperrors.NewBadRequest("property id is required")
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if input.CheckIn.IsZero() || input.CheckOut.IsZero() {
		return nil, apperrors.NewBadRequest("check-in and check-out dates are required")
	}
	if !input.CheckOut.After(input.CheckIn) {
		return nil, apperrors.NewBadRequest("check-out must be after check-in")
	}

	guests := input.Guests
	if guests <= 0 {
		guests = 1
	}

	var property models.Property
	err := s.db.WithContext(ctx).First(&property, "id = ?", propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking service: load property: %w", err)
	}
	if property.MaxGuests > 0 && guests > property.MaxGuests {
		return nil, apperrors.NewBadRequest("guest count exceeds property capacity")
	}

	booking := &models.Booking{
		PropertyID: propertyID,
		UserID:     userID,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		Guests:     guests,
		Status:     models.BookingStatusPending,
		Notes:      strings.TrimSpace(input.Notes),
	}

	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, fmt.Errorf("booking service: create booking: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "booking.create",
		Resource: booking.ID,
		Result:   "success",
		Metadata: map[string]any{"property_id": propertyID, "user_id": userID},
	})
	s.broadcastToUser(userID, "booking.created", booking)

	return booking, nil
}

// GetByID loads a booking by identifier.
func (s *BookingService) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	var booking models.Booking
	err := s.db.WithContext(ctx).Preload("Property").First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking service: get booking: %w", err)
	}
	return &booking, nil
}

// List retrieves bookings matching the supplied filters with pagination.
func (s *BookingService) List(ctx context.Context, opts ListBookingsOptions) ([]models.Booking, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Booking{})
	if opts.Filters.PropertyID != "" {
		query = query.Where("property_id = ?", opts.Filters.PropertyID)
	}
	if opts.Filters.UserID != "" {
		query = query.Where("user_id = ?", opts.Filters.UserID)
	}
	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}
	if opts.Filters.From != nil {
		query = query.Where("check_out >= ?", *opts.Filters.From)
	}
	if opts.Filters.To != nil {
		query = query.Where("check_in <= ?", *opts.Filters.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("booking service: count bookings: %w", err)
	}

	var bookings []models.Booking
	if err := query.
		Order("check_in DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("booking service: list bookings: %w", err)
	}

	return bookings, total, nil
}

// UpdateStatus moves a booking along its lifecycle. Confirming checks for
// date conflicts against other confirmed bookings on the same property.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	status = strings.TrimSpace(status)
	if _, ok := bookingTransitions[status]; !ok {
		return nil, apperrors.NewBadRequest("unknown booking status")
	}

	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking service: load booking: %w", err)
	}

	if !transitionAllowed(bookingTransitions, booking.Status, status) {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("cannot move booking from %s to %s", booking.Status, status))
	}

	if status == models.BookingStatusConfirmed {
		conflict, err := s.hasConfirmedOverlap(ctx, booking)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrBookingOverlap
		}
	}

	if err := s.db.WithContext(ctx).Model(&booking).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("booking service: update status: %w", err)
	}
	booking.Status = status

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "booking.status",
		Resource: booking.ID,
		Result:   "success",
		Metadata: map[string]any{"status": status},
	})
	s.broadcastToUser(booking.UserID, "booking.updated", &booking)

	return &booking, nil
}

// UpdateNotes replaces the free-form notes on a booking.
func (s *BookingService) UpdateNotes(ctx context.Context, id, notes string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking service: load booking: %w", err)
	}

	notes = strings.TrimSpace(notes)
	if err := s.db.WithContext(ctx).Model(&booking).Update("notes", notes).Error; err != nil {
		return nil, fmt.Errorf("booking service: update notes: %w", err)
	}
	booking.Notes = notes

	return &booking, nil
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Booking{})
	if result.Error != nil {
		return fmt.Errorf("booking service: delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "booking.delete",
		Resource: id,
		Result:   "success",
	})

	return nil
}

func (s *BookingService) hasConfirmedOverlap(ctx context.Context, booking models.Booking) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("property_id = ? AND status = ? AND id <> ?", booking.PropertyID, models.BookingStatusConfirmed, booking.ID).
		Where("check_in < ? AND check_out > ?", booking.CheckOut, booking.CheckIn).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("booking service: check overlap: %w", err)
	}
	return count > 0, nil
}

func (s *BookingService) broadcastToUser(userID, event string, booking *models.Booking) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToUser(realtime.StreamBookings, userID, realtime.Message{
		Event: event,
		Data:  booking,
	})
}

// transitionAllowed reports whether a status table permits the move.
func transitionAllowed(table map[string][]string, from, to string) bool {
	for _, allowed := range table[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
