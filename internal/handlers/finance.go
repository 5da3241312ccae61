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

// FinanceHandler exposes invoice, expense and reporting endpoints. Customers
// see their own invoices; expenses and summaries are back-office surfaces.
type FinanceHandler struct {
	finance *services.FinanceService
}

// NewFinanceHandler constructs a finance handler.
func NewFinanceHandler(finance *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

type createInvoiceRequest struct {
	UserID      string     `json:"user_id" validate:"required"`
	PropertyID  *string    `json:"property_id"`
	BookingID   *string    `json:"booking_id"`
	AmountCents int64      `json:"amount_cents" validate:"required"`
	Currency    string     `json:"currency"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes"`
}

// POST /api/invoices
func (h *FinanceHandler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invoice, err := h.finance.CreateInvoice(requestContext(c), services.CreateInvoiceInput{
		UserID:      req.UserID,
		PropertyID:  req.PropertyID,
		BookingID:   req.BookingID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invoice)
}

// GET /api/invoices
func (h *FinanceHandler) ListInvoices(c *gin.Context) {
	checker := currentChecker(c)
	opts := services.ListInvoicesOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Filters: services.InvoiceFilters{
			UserID:     c.Query("user_id"),
			PropertyID: c.Query("property_id"),
			Status:     c.Query("status"),
		},
	}
	if _, management := managementRoles[checker.Role()]; !management {
		opts.Filters.UserID = checker.UserID()
	}

	invoices, total, err := h.finance.ListInvoices(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, invoices, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/invoices/:id
func (h *FinanceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.finance.GetInvoice(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !canAccessRecord(currentChecker(c), permissions.FinanceView, invoice.UserID) {
		response.Error(c, errors.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, invoice)
}

type updateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /api/invoices/:id/status
func (h *FinanceHandler) UpdateInvoiceStatus(c *gin.Context) {
	var req updateInvoiceStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invoice, err := h.finance.UpdateInvoiceStatus(requestContext(c), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invoice)
}

// DELETE /api/invoices/:id
func (h *FinanceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.finance.DeleteInvoice(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type createExpenseRequest struct {
	PropertyID  string    `json:"property_id" validate:"required"`
	AmountCents int64     `json:"amount_cents" validate:"required"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	IncurredAt  time.Time `json:"incurred_at"`
}

// POST /api/expenses
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	expense, err := h.finance.CreateExpense(requestContext(c), services.CreateExpenseInput{
		PropertyID:  req.PropertyID,
		UserID:      currentChecker(c).UserID(),
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		IncurredAt:  req.IncurredAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, expense)
}

// GET /api/expenses
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	opts := services.ListExpensesOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Filters: services.ExpenseFilters{
			PropertyID: c.Query("property_id"),
			Category:   c.Query("category"),
		},
	}
	if since, err := time.Parse(time.RFC3339, c.Query("since")); err == nil {
		opts.Filters.Since = &since
	}
	if until, err := time.Parse(time.RFC3339, c.Query("until")); err == nil {
		opts.Filters.Until = &until
	}

	expenses, total, err := h.finance.ListExpenses(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, expenses, paginationMeta(opts.Page, opts.PageSize, total))
}

// DELETE /api/expenses/:id
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	if err := h.finance.DeleteExpense(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/finance/summary
func (h *FinanceHandler) Summary(c *gin.Context) {
	summary, err := h.finance.Summary(requestContext(c), c.Query("property_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}
