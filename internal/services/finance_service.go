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
	// ErrInvoiceNotFound indicates the requested invoice does not exist.
	ErrInvoiceNotFound = apperrors.New("INVOICE_NOT_FOUND", "Invoice not found", http.StatusNotFound)
	// ErrExpenseNotFound indicates the requested expense does not exist.
	ErrExpenseNotFound = apperrors.New("EXPENSE_NOT_FOUND", "Expense not found", http.StatusNotFound)
	// ErrInvoiceImmutable rejects edits on paid invoices.
	ErrInvoiceImmutable = apperrors.New("INVOICE_IMMUTABLE", "Paid invoices cannot be modified", http.StatusConflict)
)

// invoiceTransitions lists the allowed status moves.
var invoiceTransitions = map[string][]string{
	models.InvoiceStatusDraft:   {models.InvoiceStatusSent},
	models.InvoiceStatusSent:    {models.InvoiceStatusPaid, models.InvoiceStatusOverdue},
	models.InvoiceStatusOverdue: {models.InvoiceStatusPaid},
	models.InvoiceStatusPaid:    {},
}

// CreateInvoiceInput describes attributes for issuing an invoice.
type CreateInvoiceInput struct {
	UserID      string
	PropertyID  *string
	BookingID   *string
	AmountCents int64
	Currency    string
	DueDate     *time.Time
	Notes       string
}

// CreateExpenseInput describes attributes for recording an expense.
type CreateExpenseInput struct {
	PropertyID  string
	UserID      string
	AmountCents int64
	Currency    string
	Category    string
	Description string
	IncurredAt  time.Time
}

// InvoiceFilters captures invoice listing filters.
type InvoiceFilters struct {
	UserID     string
	PropertyID string
	Status     string
}

// ListInvoicesOptions controls pagination for invoice listing.
type ListInvoicesOptions struct {
	Page     int
	PageSize int
	Filters  InvoiceFilters
}

// ExpenseFilters captures expense listing filters.
type ExpenseFilters struct {
	PropertyID string
	Category   string
	Since      *time.Time
	Until      *time.Time
}

// ListExpensesOptions controls pagination for expense listing.
type ListExpensesOptions struct {
	Page     int
	PageSize int
	Filters  ExpenseFilters
}

// FinanceSummary aggregates invoice and expense totals for reporting.
type FinanceSummary struct {
	InvoicedCents    int64            `json:"invoiced_cents"`
	PaidCents        int64            `json:"paid_cents"`
	OutstandingCents int64            `json:"outstanding_cents"`
	ExpenseCents     int64            `json:"expense_cents"`
	NetCents         int64            `json:"net_cents"`
	InvoiceCounts    map[string]int64 `json:"invoice_counts"`
}

// FinanceService manages invoices and expenses.
type FinanceService struct {
	db           *gorm.DB
	hub          *realtime.Hub
	auditService *AuditService
	now          func() time.Time
}

// NewFinanceService constructs a FinanceService instance.
func NewFinanceService(db *gorm.DB, hub *realtime.Hub, auditService *AuditService) (*FinanceService, error) {
	if db == nil {
		return nil, errors.New("finance service: db is required")
	}
	return &FinanceService{db: db, hub: hub, auditService: auditService, now: time.Now}, nil
}

// CreateInvoice issues a new draft invoice with a generated sequential number.
func (s *FinanceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if input.AmountCents <= 0 {
		return nil, apperrors.NewBadRequest("amount must be positive")
	}

	invoice := &models.Invoice{
		UserID:      userID,
		PropertyID:  input.PropertyID,
		BookingID:   input.BookingID,
		AmountCents: input.AmountCents,
		Currency:    strings.ToUpper(defaultIfEmpty(input.Currency, "USD")),
		Status:      models.InvoiceStatusDraft,
		DueDate:     input.DueDate,
		Notes:       strings.TrimSpace(input.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.nextInvoiceNumber(tx)
		if err != nil {
			return err
		}
		invoice.Number = number
		return tx.Create(invoice).Error
	})
	if err != nil {
		return nil, fmt.Errorf("finance service: create invoice: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "invoice.create",
		Resource: invoice.ID,
		Result:   "success",
		Metadata: map[string]any{"number": invoice.Number, "amount_cents": invoice.AmountCents},
	})
	s.broadcast("invoice.created", invoice)

	return invoice, nil
}

// GetInvoice loads an invoice by identifier.
func (s *FinanceService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	ctx = ensureContext(ctx)

	var invoice models.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finance service: get invoice: %w", err)
	}
	return &invoice, nil
}

// ListInvoices retrieves invoices matching the supplied filters with pagination.
func (s *FinanceService) ListInvoices(ctx context.Context, opts ListInvoicesOptions) ([]models.Invoice, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Invoice{})
	if opts.Filters.UserID != "" {
		query = query.Where("user_id = ?", opts.Filters.UserID)
	}
	if opts.Filters.PropertyID != "" {
		query = query.Where("property_id = ?", opts.Filters.PropertyID)
	}
	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("finance service: count invoices: %w", err)
	}

	var invoices []models.Invoice
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("finance service: list invoices: %w", err)
	}

	return invoices, total, nil
}

// UpdateInvoiceStatus moves an invoice along its lifecycle. Marking paid
// stamps the payment time.
func (s *FinanceService) UpdateInvoiceStatus(ctx context.Context, id, status string) (*models.Invoice, error) {
	ctx = ensureContext(ctx)

	status = strings.TrimSpace(status)
	if _, ok := invoiceTransitions[status]; !ok {
		return nil, apperrors.NewBadRequest("unknown invoice status")
	}

	var invoice models.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finance service: load invoice: %w", err)
	}

	if invoice.Status == models.InvoiceStatusPaid {
		return nil, ErrInvoiceImmutable
	}
	if !transitionAllowed(invoiceTransitions, invoice.Status, status) {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("cannot move invoice from %s to %s", invoice.Status, status))
	}

	updates := map[string]any{"status": status}
	if status == models.InvoiceStatusPaid {
		now := s.now().UTC()
		updates["paid_at"] = now
		invoice.PaidAt = &now
	}

	if err := s.db.WithContext(ctx).Model(&invoice).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("finance service: update invoice status: %w", err)
	}
	invoice.Status = status

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "invoice.status",
		Resource: invoice.ID,
		Result:   "success",
		Metadata: map[string]any{"status": status},
	})
	s.broadcast("invoice.updated", &invoice)

	return &invoice, nil
}

// DeleteInvoice removes a draft invoice. Issued invoices cannot be deleted.
func (s *FinanceService) DeleteInvoice(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var invoice models.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("finance service: load invoice: %w", err)
	}

	if invoice.Status != models.InvoiceStatusDraft {
		return ErrInvoiceImmutable
	}

	if err := s.db.WithContext(ctx).Delete(&invoice).Error; err != nil {
		return fmt.Errorf("finance service: delete invoice: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "invoice.delete",
		Resource: id,
		Result:   "success",
	})

	return nil
}

// CreateExpense records a new property expense.
func (s *FinanceService) CreateExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, error) {
	ctx = ensureContext(ctx)

	propertyID := strings.TrimSpace(input.PropertyID)
	if propertyID == "" {
		return nil, apperrors.NewBadRequest("property id is required")
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if input.AmountCents <= 0 {
		return nil, apperrors.NewBadRequest("amount must be positive")
	}

	incurredAt := input.IncurredAt
	if incurredAt.IsZero() {
		incurredAt = s.now().UTC()
	}

	expense := &models.Expense{
		PropertyID:  propertyID,
		UserID:      userID,
		AmountCents: input.AmountCents,
		Currency:    strings.ToUpper(defaultIfEmpty(input.Currency, "USD")),
		Category:    strings.TrimSpace(defaultIfEmpty(input.Category, "general")),
		Description: strings.TrimSpace(input.Description),
		IncurredAt:  incurredAt,
	}

	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, fmt.Errorf("finance service: create expense: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "expense.create",
		Resource: expense.ID,
		Result:   "success",
		Metadata: map[string]any{"property_id": propertyID, "amount_cents": expense.AmountCents},
	})

	return expense, nil
}

// ListExpenses retrieves expenses matching the supplied filters with pagination.
func (s *FinanceService) ListExpenses(ctx context.Context, opts ListExpensesOptions) ([]models.Expense, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Expense{})
	if opts.Filters.PropertyID != "" {
		query = query.Where("property_id = ?", opts.Filters.PropertyID)
	}
	if opts.Filters.Category != "" {
		query = query.Where("category = ?", opts.Filters.Category)
	}
	if opts.Filters.Since != nil {
		query = query.Where("incurred_at >= ?", *opts.Filters.Since)
	}
	if opts.Filters.Until != nil {
		query = query.Where("incurred_at <= ?", *opts.Filters.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("finance service: count expenses: %w", err)
	}

	var expenses []models.Expense
	if err := query.
		Order("incurred_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&expenses).Error; err != nil {
		return nil, 0, fmt.Errorf("finance service: list expenses: %w", err)
	}

	return expenses, total, nil
}

// DeleteExpense removes an expense record.
func (s *FinanceService) DeleteExpense(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Expense{})
	if result.Error != nil {
		return fmt.Errorf("finance service: delete expense: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "expense.delete",
		Resource: id,
		Result:   "success",
	})

	return nil
}

// Summary aggregates invoice and expense totals, optionally scoped to a property.
func (s *FinanceService) Summary(ctx context.Context, propertyID string) (*FinanceSummary, error) {
	ctx = ensureContext(ctx)

	summary := &FinanceSummary{InvoiceCounts: make(map[string]int64)}

	invoiceQuery := s.db.WithContext(ctx).Model(&models.Invoice{})
	expenseQuery := s.db.WithContext(ctx).Model(&models.Expense{})
	if propertyID = strings.TrimSpace(propertyID); propertyID != "" {
		invoiceQuery = invoiceQuery.Where("property_id = ?", propertyID)
		expenseQuery = expenseQuery.Where("property_id = ?", propertyID)
	}

	type statusRow struct {
		Status string
		Count  int64
		Total  int64
	}
	var rows []statusRow
	if err := invoiceQuery.
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("finance service: aggregate invoices: %w", err)
	}

	for _, row := range rows {
		summary.InvoiceCounts[row.Status] = row.Count
		summary.InvoicedCents += row.Total
		if row.Status == models.InvoiceStatusPaid {
			summary.PaidCents += row.Total
		}
	}
	summary.OutstandingCents = summary.InvoicedCents - summary.PaidCents

	var expenseTotal int64
	if err := expenseQuery.
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&expenseTotal).Error; err != nil {
		return nil, fmt.Errorf("finance service: aggregate expenses: %w", err)
	}
	summary.ExpenseCents = expenseTotal
	summary.NetCents = summary.PaidCents - expenseTotal

	return summary, nil
}

// MarkOverdueInvoices flags sent invoices whose due date has passed.
func (s *FinanceService) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.InvoiceStatusSent, s.now()).
		Update("status", models.InvoiceStatusOverdue)
	if result.Error != nil {
		return 0, fmt.Errorf("finance service: mark overdue invoices: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// nextInvoiceNumber produces sequential numbers of the form INV-202406-0007
// scoped to the current month.
func (s *FinanceService) nextInvoiceNumber(tx *gorm.DB) (string, error) {
	prefix := fmt.Sprintf("INV-%s-", s.now().UTC().Format("200601"))

	var count int64
	if err := tx.Model(&models.Invoice{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("finance service: count invoice numbers: %w", err)
	}

	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func (s *FinanceService) broadcast(event string, invoice *models.Invoice) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToUser(realtime.StreamFinance, invoice.UserID, realtime.Message{
		Event: event,
		Data:  invoice,
	})
}
