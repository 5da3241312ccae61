package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// AuditHandler exposes the audit trail to system administrators.
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler constructs an audit handler.
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	opts := services.AuditListOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 50),
		Filters: services.AuditFilters{
			UserID:   c.Query("user_id"),
			Action:   c.Query("action"),
			Result:   c.Query("result"),
			Resource: c.Query("resource"),
		},
	}
	if since, err := time.Parse(time.RFC3339, c.Query("since")); err == nil {
		opts.Filters.Since = &since
	}
	if until, err := time.Parse(time.RFC3339, c.Query("until")); err == nil {
		opts.Filters.Until = &until
	}

	entries, total, err := h.audit.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, paginationMeta(opts.Page, opts.PageSize, total))
}
