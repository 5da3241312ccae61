package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// DocumentsHandler exposes document metadata endpoints.
type DocumentsHandler struct {
	documents *services.DocumentService
}

// NewDocumentsHandler constructs a documents handler.
func NewDocumentsHandler(documents *services.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

type uploadDocumentRequest struct {
	OwnerID     string         `json:"owner_id"`
	PropertyID  *string        `json:"property_id"`
	FileName    string         `json:"file_name" validate:"required,max=255"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Metadata    map[string]any `json:"metadata"`
}

// POST /api/documents
func (h *DocumentsHandler) Upload(c *gin.Context) {
	var req uploadDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	checker := currentChecker(c)
	ownerID := req.OwnerID
	if _, management := managementRoles[checker.Role()]; !management {
		ownerID = checker.UserID()
	}
	if ownerID == "" {
		ownerID = checker.UserID()
	}

	document, err := h.documents.Upload(requestContext(c), services.UploadDocumentInput{
		OwnerID:     ownerID,
		PropertyID:  req.PropertyID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, document)
}

// GET /api/documents
func (h *DocumentsHandler) List(c *gin.Context) {
	checker := currentChecker(c)
	opts := services.ListDocumentsOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Filters: services.DocumentFilters{
			OwnerID:    c.Query("owner_id"),
			PropertyID: c.Query("property_id"),
			Query:      c.Query("q"),
		},
	}
	if _, management := managementRoles[checker.Role()]; !management {
		opts.Filters.OwnerID = checker.UserID()
	}

	documents, total, err := h.documents.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, documents, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/documents/:id
func (h *DocumentsHandler) Get(c *gin.Context) {
	document, err := h.documents.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canAccessRecord(currentChecker(c), permissions.DocumentsView, document.OwnerID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, document)
}

// DELETE /api/documents/:id
func (h *DocumentsHandler) Delete(c *gin.Context) {
	ctx := requestContext(c)
	document, err := h.documents.GetByID(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canModifyRecord(currentChecker(c), permissions.DocumentsDelete, document.OwnerID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	if err := h.documents.Delete(ctx, document.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
