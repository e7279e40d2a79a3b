package transactions

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func validInvoiceType(t string) bool {
	switch t {
	case "receipt", "invoice", "purchase_order", "other":
		return true
	}
	return false
}

func validInvoiceStatus(s string) bool {
	switch s {
	case "pending", "paid", "overdue", "draft":
		return true
	}
	return false
}

func ListInvoices(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListInvoices", err)
		return
	}

	// Scope through the owning transaction; invoices carry no company
	// column of their own.
	query := db.DB.
		Joins("JOIN finance.transactions ON finance.transactions.id = finance.invoices.transaction_id").
		Where("finance.transactions.company_id = ?", actor.CompanyID)
	if txID := r.URL.Query().Get("transaction_id"); txID != "" {
		query = query.Where("finance.invoices.transaction_id = ?", txID)
	}
	if t := r.URL.Query().Get("type"); t != "" {
		query = query.Where("finance.invoices.type = ?", t)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("finance.invoices.status = ?", status)
	}

	var invoices []Invoice
	if err := query.Order("finance.invoices.created_at DESC").Find(&invoices).Error; err != nil {
		apperr.Write(w, "ListInvoices", apperr.Internalf(err, "failed to fetch invoices"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateInvoice", err)
		return
	}

	var input struct {
		TransactionID uuid.UUID  `json:"transaction_id"`
		FileURL       string     `json:"file_url"`
		Type          string     `json:"type"`
		InvoiceNumber string     `json:"invoice_number"`
		Status        string     `json:"status"`
		DueDate       *time.Time `json:"due_date,omitempty"`
		Notes         string     `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "CreateInvoice", apperr.Validationf("invalid request body"))
		return
	}

	if input.FileURL == "" {
		apperr.Write(w, "CreateInvoice", apperr.Validationf("file_url is required"))
		return
	}
	if !validInvoiceType(input.Type) {
		apperr.Write(w, "CreateInvoice", apperr.Validationf("type must be receipt, invoice, purchase_order or other"))
		return
	}
	if input.Status == "" {
		input.Status = "pending"
	}
	if !validInvoiceStatus(input.Status) {
		apperr.Write(w, "CreateInvoice", apperr.Validationf("status must be pending, paid, overdue or draft"))
		return
	}

	var txn Transaction
	if err := db.DB.First(&txn, "id = ? AND company_id = ?", input.TransactionID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "CreateInvoice", apperr.NotFoundf("transaction not found"))
		return
	}

	invoice := Invoice{
		TransactionID: input.TransactionID,
		FileURL:       input.FileURL,
		Type:          input.Type,
		InvoiceNumber: input.InvoiceNumber,
		Status:        input.Status,
		DueDate:       input.DueDate,
		Notes:         input.Notes,
	}

	if err := db.DB.Create(&invoice).Error; err != nil {
		apperr.Write(w, "CreateInvoice", apperr.Internalf(err, "failed to create invoice"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"invoice": invoice})
}

func DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteInvoice", err)
		return
	}

	invoiceID := chi.URLParam(r, "invoice_id")

	var invoice Invoice
	if err := db.DB.
		Joins("JOIN finance.transactions ON finance.transactions.id = finance.invoices.transaction_id").
		Where("finance.transactions.company_id = ?", actor.CompanyID).
		First(&invoice, "finance.invoices.id = ?", invoiceID).Error; err != nil {
		apperr.Write(w, "DeleteInvoice", apperr.NotFoundf("invoice not found"))
		return
	}

	var txn Transaction
	if err := db.DB.First(&txn, "id = ?", invoice.TransactionID).Error; err != nil {
		apperr.Write(w, "DeleteInvoice", apperr.Internalf(err, "failed to load transaction"))
		return
	}
	if !policy.Can(actor, policy.ActionTransactionDelete, txn.UserID) {
		apperr.Write(w, "DeleteInvoice", apperr.Forbiddenf("only the transaction creator or an administrator can delete this invoice"))
		return
	}

	if err := db.DB.Delete(&invoice).Error; err != nil {
		apperr.Write(w, "DeleteInvoice", apperr.Internalf(err, "failed to delete invoice"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
