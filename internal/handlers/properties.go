package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// PropertiesHandler exposes property catalogue endpoints. Management roles
// operate on the full catalogue; providers are scoped to units they own.
type PropertiesHandler struct {
	properties *services.PropertyService
}

// NewPropertiesHandler constructs a properties handler.
func NewPropertiesHandler(properties *services.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{properties: properties}
}

type createPropertyRequest struct {
	OwnerID   string         `json:"owner_id"`
	Name      string         `json:"name" validate:"required,max=200"`
	Address   string         `json:"address"`
	City      string         `json:"city"`
	Country   string         `json:"country"`
	Bedrooms  int            `json:"bedrooms"`
	MaxGuests int            `json:"max_guests"`
	Amenities map[string]any `json:"amenities"`
	Notes     string         `json:"notes"`
}

// POST /api/properties
func (h *PropertiesHandler) Create(c *gin.Context) {
	var req createPropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	checker := currentChecker(c)
	ownerID := req.OwnerID
	if _, management := managementRoles[checker.Role()]; !management {
		// Non-management callers always create units under their own account.
		ownerID = checker.UserID()
	}
	if ownerID == "" {
		ownerID = checker.UserID()
	}

	property, err := h.properties.Create(requestContext(c), services.CreatePropertyInput{
		OwnerID:   ownerID,
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		Bedrooms:  req.Bedrooms,
		MaxGuests: req.MaxGuests,
		Amenities: req.Amenities,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, property)
}

// GET /api/properties
func (h *PropertiesHandler) List(c *gin.Context) {
	checker := currentChecker(c)
	opts := services.ListPropertiesOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Filters: services.PropertyFilters{
			OwnerID: c.Query("owner_id"),
			Status:  c.Query("status"),
			City:    c.Query("city"),
			Query:   c.Query("q"),
		},
	}
	if _, management := managementRoles[checker.Role()]; !management {
		opts.Filters.OwnerID = checker.UserID()
	}

	properties, total, err := h.properties.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, properties, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/properties/:id
func (h *PropertiesHandler) Get(c *gin.Context) {
	property, err := h.properties.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canAccessRecord(currentChecker(c), permissions.PropertiesView, property.OwnerID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, property)
}

type updatePropertyRequest struct {
	Name      *string        `json:"name" validate:"omitempty,max=200"`
	Address   *string        `json:"address"`
	City      *string        `json:"city"`
	Country   *string        `json:"country"`
	Bedrooms  *int           `json:"bedrooms"`
	MaxGuests *int           `json:"max_guests"`
	Status    *string        `json:"status"`
	Amenities map[string]any `json:"amenities"`
	Notes     *string        `json:"notes"`
}

// PUT /api/properties/:id
func (h *PropertiesHandler) Update(c *gin.Context) {
	var req updatePropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	property, err := h.properties.GetByID(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canModifyRecord(currentChecker(c), permissions.PropertiesEdit, property.OwnerID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	updated, err := h.properties.Update(ctx, property.ID, services.UpdatePropertyInput{
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		Bedrooms:  req.Bedrooms,
		MaxGuests: req.MaxGuests,
		Status:    req.Status,
		Amenities: req.Amenities,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// DELETE /api/properties/:id
func (h *PropertiesHandler) Delete(c *gin.Context) {
	ctx := requestContext(c)
	property, err := h.properties.GetByID(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canModifyRecord(currentChecker(c), permissions.PropertiesDelete, property.OwnerID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	if err := h.properties.Delete(ctx, property.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
