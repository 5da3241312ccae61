package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/realtime"
	apperrors "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
)

// ErrPropertyNotFound indicates the requested property does not exist.
var ErrPropertyNotFound = apperrors.New("PROPERTY_NOT_FOUND", "Property not found", http.StatusNotFound)

var propertyStatuses = map[string]struct{}{
	models.PropertyStatusActive:      {},
	models.PropertyStatusInactive:    {},
	models.PropertyStatusMaintenance: {},
}

// CreatePropertyInput describes attributes for registering a property.
type CreatePropertyInput struct {
	OwnerID   string
	Name      string
	Address   string
	City      string
	Country   string
	Bedrooms  int
	MaxGuests int
	Amenities map[string]any
	Notes     string
}

// UpdatePropertyInput enumerates mutable property attributes.
type UpdatePropertyInput struct {
	Name      *string
	Address   *string
	City      *string
	Country   *string
	Bedrooms  *int
	MaxGuests *int
	Status    *string
	Amenities map[string]any
	Notes     *string
}

// PropertyFilters captures listing filters.
type PropertyFilters struct {
	OwnerID string
	Status  string
	City    string
	Query   string
}

// ListPropertiesOptions controls pagination for property listing.
type ListPropertiesOptions struct {
	Page     int
	PageSize int
	Filters  PropertyFilters
}

// PropertyService manages the property catalogue.
type PropertyService struct {
	db           *gorm.DB
	hub          *realtime.Hub
	auditService *AuditService
}

// NewPropertyService constructs a PropertyService instance.
func NewPropertyService(db *gorm.DB, hub *realtime.Hub, auditService *AuditService) (*PropertyService, error) {
	if db == nil {
		return nil, errors.New("property service: db is required")
	}
	return &PropertyService{db: db, hub: hub, auditService: auditService}, nil
}

// Create registers a new property for the supplied owner.
func (s *PropertyService) Create(ctx context.Context, input CreatePropertyInput) (*models.Property, error) {
	ctx = ensureContext(ctx)

	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, apperrors.NewBadRequest("owner id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	amenities, err := encodeJSON(input.Amenities)
	if err != nil {
		return nil, fmt.Errorf("property service: marshal amenities: %w", err)
	}

	property := &models.Property{
		OwnerID:   ownerID,
		Name:      name,
		Address:   strings.TrimSpace(input.Address),
		City:      strings.TrimSpace(input.City),
		Country:   strings.TrimSpace(input.Country),
		Bedrooms:  input.Bedrooms,
		MaxGuests: input.MaxGuests,
		Status:    models.PropertyStatusActive,
		Amenities: amenities,
		Notes:     strings.TrimSpace(input.Notes),
	}

	if err := s.db.WithContext(ctx).Create(property).Error; err != nil {
		return nil, fmt.Errorf("property service: create property: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "property.create",
		Resource: property.ID,
		Result:   "success",
		Metadata: map[string]any{"name": property.Name, "owner_id": property.OwnerID},
	})
	s.broadcast("property.created", property)

	return property, nil
}

// GetByID loads a property by identifier.
func (s *PropertyService) GetByID(ctx context.Context, id string) (*models.Property, error) {
	ctx = ensureContext(ctx)

	var property models.Property
	err := s.db.WithContext(ctx).Preload("Owner").First(&property, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("property service: get property: %w", err)
	}
	return &property, nil
}

// List retrieves properties matching the supplied filters with pagination.
func (s *PropertyService) List(ctx context.Context, opts ListPropertiesOptions) ([]models.Property, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Property{})
	if opts.Filters.OwnerID != "" {
		query = query.Where("owner_id = ?", opts.Filters.OwnerID)
	}
	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}
	if opts.Filters.City != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(opts.Filters.City)))
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("property service: count properties: %w", err)
	}

	var properties []models.Property
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&properties).Error; err != nil {
		return nil, 0, fmt.Errorf("property service: list properties: %w", err)
	}

	return properties, total, nil
}

// Update persists mutable attributes for an existing property.
func (s *PropertyService) Update(ctx context.Context, id string, input UpdatePropertyInput) (*models.Property, error) {
	ctx = ensureContext(ctx)

	var property models.Property
	err := s.db.WithContext(ctx).First(&property, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("property service: load property: %w", err)
	}

	updates := map[string]any{}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != property.Name {
			updates["name"] = name
		}
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.Country != nil {
		updates["country"] = strings.TrimSpace(*input.Country)
	}
	if input.Bedrooms != nil {
		updates["bedrooms"] = *input.Bedrooms
	}
	if input.MaxGuests != nil {
		updates["max_guests"] = *input.MaxGuests
	}
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if _, ok := propertyStatuses[status]; !ok {
			return nil, apperrors.NewBadRequest("unknown property status")
		}
		updates["status"] = status
	}
	if input.Amenities != nil {
		amenities, err := encodeJSON(input.Amenities)
		if err != nil {
			return nil, fmt.Errorf("property service: marshal amenities: %w", err)
		}
		updates["amenities"] = amenities
	}
	if input.Notes != nil {
		updates["notes"] = strings.TrimSpace(*input.Notes)
	}

	if len(updates) == 0 {
		return &property, nil
	}

	if err := s.db.WithContext(ctx).Model(&property).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("property service: update property: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("property service: reload property: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "property.update",
		Resource: property.ID,
		Result:   "success",
		Metadata: updates,
	})
	s.broadcast("property.updated", &property)

	return &property, nil
}

// Delete removes a property and its dependent records are left to FK rules.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Property{})
	if result.Error != nil {
		return fmt.Errorf("property service: delete property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "property.delete",
		Resource: id,
		Result:   "success",
	})
	s.hubBroadcast(realtime.Message{Event: "property.deleted", Data: map[string]any{"property_id": id}})

	return nil
}

func (s *PropertyService) broadcast(event string, property *models.Property) {
	s.hubBroadcast(realtime.Message{Event: event, Data: property})
}

func (s *PropertyService) hubBroadcast(message realtime.Message) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastStream(realtime.StreamProperties, message)
}
