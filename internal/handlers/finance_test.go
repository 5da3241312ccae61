package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/middleware"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/services"
)

func newFinanceRouter(env *handlerEnv, identity gin.HandlerFunc) *gin.Engine {
	h := NewFinanceHandler(env.finance)

	r := gin.New()
	api := r.Group("/api", identity)
	api.POST("/invoices", middleware.RequirePermission(permissions.FinanceCreate), h.CreateInvoice)
	api.GET("/invoices", middleware.RequirePermission(permissions.FinanceView), h.ListInvoices)
	api.GET("/invoices/:id", middleware.RequirePermission(permissions.FinanceView), h.GetInvoice)
	api.PATCH("/invoices/:id/status", middleware.RequirePermission(permissions.FinanceEdit), h.UpdateInvoiceStatus)
	api.DELETE("/invoices/:id", middleware.RequirePermission(permissions.FinanceDelete), h.DeleteInvoice)
	api.POST("/expenses", middleware.RequirePermission(permissions.FinanceCreate), h.CreateExpense)
	api.GET("/expenses", middleware.RequirePermission(permissions.FinanceView), h.ListExpenses)
	api.GET("/finance/summary", middleware.RequirePermission(permissions.ReportsView), h.Summary)
	return r
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	env := newHandlerEnv(t)
	guest := env.createUser(t, "guest@example.com", "customer")
	ops := env.createUser(t, "ops@example.com", "ops")

	asOps := actAs(permissions.RoleOps, ops.ID)

	rec := performJSON(t, newFinanceRouter(env, asOps), http.MethodPost, "/api/invoices", map[string]any{
		"user_id":      guest.ID,
		"amount_cents": 150000,
		"currency":     "usd",
	})
	requireStatus(t, rec, http.StatusCreated)

	var invoice models.Invoice
	decodeData(t, rec, &invoice)
	require.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	require.Equal(t, "USD", invoice.Currency)
	require.NotEmpty(t, invoice.Number)

	rec = performJSON(t, newFinanceRouter(env, asOps), http.MethodPatch, "/api/invoices/"+invoice.ID+"/status", map[string]any{"status": "sent"})
	requireStatus(t, rec, http.StatusOK)

	// Ops lack the delete capability entirely.
	rec = performJSON(t, newFinanceRouter(env, asOps), http.MethodDelete, "/api/invoices/"+invoice.ID, nil)
	requireStatus(t, rec, http.StatusForbidden)

	admin := env.createUser(t, "admin@example.com", "admin")
	rec = performJSON(t, newFinanceRouter(env, actAs(permissions.RoleAdmin, admin.ID)), http.MethodDelete, "/api/invoices/"+invoice.ID, nil)
	// Only draft invoices can be deleted.
	requireStatus(t, rec, http.StatusConflict)
}

func TestInvoiceListScopedForCustomers(t *testing.T) {
	env := newHandlerEnv(t)
	guest := env.createUser(t, "guest@example.com", "customer")
	other := env.createUser(t, "other@example.com", "customer")

	for _, userID := range []string{guest.ID, other.ID} {
		_, err := env.finance.CreateInvoice(context.Background(), services.CreateInvoiceInput{
			UserID:      userID,
			AmountCents: 5000,
		})
		require.NoError(t, err)
	}

	rec := performJSON(t, newFinanceRouter(env, actAs(permissions.RoleCustomer, guest.ID)), http.MethodGet, "/api/invoices?user_id="+other.ID, nil)
	requireStatus(t, rec, http.StatusOK)

	var listed []models.Invoice
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, guest.ID, listed[0].UserID)
}

func TestInvoiceDetailOwnershipGate(t *testing.T) {
	env := newHandlerEnv(t)
	guest := env.createUser(t, "guest@example.com", "customer")
	other := env.createUser(t, "other@example.com", "customer")

	invoice, err := env.finance.CreateInvoice(context.Background(), services.CreateInvoiceInput{
		UserID:      guest.ID,
		AmountCents: 5000,
	})
	require.NoError(t, err)

	rec := performJSON(t, newFinanceRouter(env, actAs(permissions.RoleCustomer, guest.ID)), http.MethodGet, "/api/invoices/"+invoice.ID, nil)
	requireStatus(t, rec, http.StatusOK)

	rec = performJSON(t, newFinanceRouter(env, actAs(permissions.RoleCustomer, other.ID)), http.MethodGet, "/api/invoices/"+invoice.ID, nil)
	requireStatus(t, rec, http.StatusForbidden)
}

func TestExpensesAndSummaryEndpoints(t *testing.T) {
	env := newHandlerEnv(t)
	owner := env.createUser(t, "owner@example.com", "provider")
	ops := env.createUser(t, "ops@example.com", "ops")
	property := env.createProperty(t, owner.ID, "Villa Sol")

	asOps := actAs(permissions.RoleOps, ops.ID)

	rec := performJSON(t, newFinanceRouter(env, asOps), http.MethodPost, "/api/expenses", map[string]any{
		"property_id":  property.ID,
		"amount_cents": 2500,
		"category":     "cleaning",
	})
	requireStatus(t, rec, http.StatusCreated)

	var expense models.Expense
	decodeData(t, rec, &expense)
	require.Equal(t, ops.ID, expense.UserID, "expenses are attributed to the recording user")

	rec = performJSON(t, newFinanceRouter(env, asOps), http.MethodGet, "/api/expenses?category=cleaning", nil)
	requireStatus(t, rec, http.StatusOK)
	var expenses []models.Expense
	decodeData(t, rec, &expenses)
	require.Len(t, expenses, 1)

	rec = performJSON(t, newFinanceRouter(env, asOps), http.MethodGet, "/api/finance/summary?property_id="+property.ID, nil)
	requireStatus(t, rec, http.StatusOK)
	var summary services.FinanceSummary
	decodeData(t, rec, &summary)
	require.Equal(t, int64(2500), summary.ExpenseCents)
	require.Equal(t, int64(-2500), summary.NetCents)
}
