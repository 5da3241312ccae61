package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	apperrors "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
)

// ErrDocumentNotFound indicates the requested document does not exist.
var ErrDocumentNotFound = apperrors.New("DOCUMENT_NOT_FOUND", "Document not found", http.StatusNotFound)

// UploadDocumentInput describes metadata for a stored file.
type UploadDocumentInput struct {
	OwnerID     string
	PropertyID  *string
	FileName    string
	ContentType string
	SizeBytes   int64
	Metadata    map[string]any
}

// DocumentFilters captures listing filters.
type DocumentFilters struct {
	OwnerID    string
	PropertyID string
	Query      string
}

// ListDocumentsOptions controls pagination for document listing.
type ListDocumentsOptions struct {
	Page     int
	PageSize int
	Filters  DocumentFilters
}

// DocumentService manages document metadata. File bodies live in object
// storage keyed by the generated storage path.
type DocumentService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(db *gorm.DB, auditService *AuditService) (*DocumentService, error) {
	if db == nil {
		return nil, errors.New("document service: db is required")
	}
	return &DocumentService{db: db, auditService: auditService}, nil
}

// Upload registers metadata for a newly stored file.
func (s *DocumentService) Upload(ctx context.Context, input UploadDocumentInput) (*models.Document, error) {
	ctx = ensureContext(ctx)

	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, apperrors.NewBadRequest("owner id is required")
	}
	fileName := path.Base(strings.TrimSpace(input.FileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, apperrors.NewBadRequest("file name is required")
	}
	if input.SizeBytes < 0 {
		return nil, apperrors.NewBadRequest("size must not be negative")
	}

	metadata, err := encodeJSON(input.Metadata)
	if err != nil {
		return nil, fmt.Errorf("document service: marshal metadata: %w", err)
	}

	document := &models.Document{
		OwnerID:     ownerID,
		PropertyID:  input.PropertyID,
		FileName:    fileName,
		ContentType: strings.TrimSpace(defaultIfEmpty(input.ContentType, "application/octet-stream")),
		SizeBytes:   input.SizeBytes,
		StoragePath: path.Join("documents", ownerID, uuid.NewString()+path.Ext(fileName)),
		Metadata:    metadata,
	}

	if err := s.db.WithContext(ctx).Create(document).Error; err != nil {
		return nil, fmt.Errorf("document service: create document: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "document.upload",
		Resource: document.ID,
		Result:   "success",
		Metadata: map[string]any{"file_name": document.FileName, "owner_id": ownerID},
	})

	return document, nil
}

// GetByID loads a document by identifier.
func (s *DocumentService) GetByID(ctx context.Context, id string) (*models.Document, error) {
	ctx = ensureContext(ctx)

	var document models.Document
	err := s.db.WithContext(ctx).First(&document, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("document service: get document: %w", err)
	}
	return &document, nil
}

// List retrieves documents matching the supplied filters with pagination.
func (s *DocumentService) List(ctx context.Context, opts ListDocumentsOptions) ([]models.Document, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Document{})
	if opts.Filters.OwnerID != "" {
		query = query.Where("owner_id = ?", opts.Filters.OwnerID)
	}
	if opts.Filters.PropertyID != "" {
		query = query.Where("property_id = ?", opts.Filters.PropertyID)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		query = query.Where("LOWER(file_name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("document service: count documents: %w", err)
	}

	var documents []models.Document
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&documents).Error; err != nil {
		return nil, 0, fmt.Errorf("document service: list documents: %w", err)
	}

	return documents, total, nil
}

// Delete removes document metadata.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Document{})
	if result.Error != nil {
		return fmt.Errorf("document service: delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "document.delete",
		Resource: id,
		Result:   "success",
	})

	return nil
}
