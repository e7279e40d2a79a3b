package transactions

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func validType(t string) bool {
	return t == TypeIncome || t == TypeExpense || t == TypeTransfer
}

func validStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

func ListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListTransactions", err)
		return
	}

	query := db.DB.Where("company_id = ?", actor.CompanyID).
		Preload("Category").Preload("Supplier").Preload("Client").Preload("Invoices")
	if t := r.URL.Query().Get("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var txns []Transaction
	if err := query.Order("transaction_date DESC").Find(&txns).Error; err != nil {
		apperr.Write(w, "ListTransactions", apperr.Internalf(err, "failed to fetch transactions"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func GetTransaction(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetTransaction", err)
		return
	}

	txID := chi.URLParam(r, "transaction_id")

	var txn Transaction
	if err := db.DB.Preload("Category").Preload("Supplier").Preload("Client").Preload("Invoices").
		First(&txn, "id = ? AND company_id = ?", txID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "GetTransaction", apperr.NotFoundf("transaction not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transaction": txn})
}

type createTransactionInput struct {
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	SupplierID      *uuid.UUID      `json:"supplier_id,omitempty"`
	ClientID        *uuid.UUID      `json:"client_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	PaymentTags     []string        `json:"payment_tags"`
}

func CreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateTransaction", err)
		return
	}

	var input createTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "CreateTransaction", apperr.Validationf("invalid request body"))
		return
	}

	if !validType(input.Type) {
		apperr.Write(w, "CreateTransaction", apperr.Validationf("type must be income, expense or transfer"))
		return
	}
	if !input.Amount.IsPositive() {
		apperr.Write(w, "CreateTransaction", apperr.Validationf("amount must be positive"))
		return
	}
	if input.Status == "" {
		input.Status = StatusCompleted
	}
	if !validStatus(input.Status) {
		apperr.Write(w, "CreateTransaction", apperr.Validationf("status must be pending, completed or cancelled"))
		return
	}
	if input.TransactionDate.IsZero() {
		input.TransactionDate = time.Now()
	}

	txn := Transaction{
		CompanyID:       actor.CompanyID,
		UserID:          user.ID,
		Type:            input.Type,
		Amount:          input.Amount,
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		SupplierID:      input.SupplierID,
		ClientID:        input.ClientID,
		TransactionDate: input.TransactionDate,
		Status:          input.Status,
		PaymentMethod:   input.PaymentMethod,
		ReferenceNumber: input.ReferenceNumber,
		PaymentTags:     pq.StringArray(input.PaymentTags),
	}

	terr := db.DB.Transaction(func(tx *gorm.DB) error {
		if input.CategoryID != nil {
			var category org.Category
			if err := tx.First(&category, "id = ? AND company_id = ?", *input.CategoryID, actor.CompanyID).Error; err != nil {
				return apperr.NotFoundf("category not found")
			}
		}
		if err := tx.Create(&txn).Error; err != nil {
			return apperr.Internalf(err, "failed to create transaction")
		}
		return tx.Preload("Category").Preload("Supplier").Preload("Client").
			First(&txn, "id = ?", txn.ID).Error
	})
	if terr != nil {
		apperr.Write(w, "CreateTransaction", terr)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"transaction": txn})
}

func UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateTransaction", err)
		return
	}

	txID := chi.URLParam(r, "transaction_id")

	var txn Transaction
	if err := db.DB.First(&txn, "id = ? AND company_id = ?", txID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateTransaction", apperr.NotFoundf("transaction not found"))
		return
	}

	if !policy.Can(actor, policy.ActionTransactionUpdate, txn.UserID) {
		apperr.Write(w, "UpdateTransaction", apperr.Forbiddenf("only the creator or an administrator can update this transaction"))
		return
	}

	var updates struct {
		Type            *string          `json:"type,omitempty"`
		Amount          *decimal.Decimal `json:"amount,omitempty"`
		Description     *string          `json:"description,omitempty"`
		Status          *string          `json:"status,omitempty"`
		PaymentMethod   *string          `json:"payment_method,omitempty"`
		ReferenceNumber *string          `json:"reference_number,omitempty"`
		PaymentTags     *[]string        `json:"payment_tags,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateTransaction", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.Type != nil {
		if !validType(*updates.Type) {
			apperr.Write(w, "UpdateTransaction", apperr.Validationf("type must be income, expense or transfer"))
			return
		}
		updateMap["type"] = *updates.Type
	}
	if updates.Amount != nil {
		if !updates.Amount.IsPositive() {
			apperr.Write(w, "UpdateTransaction", apperr.Validationf("amount must be positive"))
			return
		}
		updateMap["amount"] = *updates.Amount
	}
	if updates.Description != nil {
		updateMap["description"] = *updates.Description
	}
	if updates.Status != nil {
		if !validStatus(*updates.Status) {
			apperr.Write(w, "UpdateTransaction", apperr.Validationf("status must be pending, completed or cancelled"))
			return
		}
		updateMap["status"] = *updates.Status
	}
	if updates.PaymentMethod != nil {
		updateMap["payment_method"] = *updates.PaymentMethod
	}
	if updates.ReferenceNumber != nil {
		updateMap["reference_number"] = *updates.ReferenceNumber
	}
	if updates.PaymentTags != nil {
		updateMap["payment_tags"] = pq.StringArray(*updates.PaymentTags)
	}

	if err := db.DB.Model(&txn).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateTransaction", apperr.Internalf(err, "failed to update transaction"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transaction": txn})
}

// DeleteTransaction soft-deletes; the row stays for audit but drops out
// of listings and totals.
func DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteTransaction", err)
		return
	}

	txID := chi.URLParam(r, "transaction_id")

	var txn Transaction
	if err := db.DB.First(&txn, "id = ? AND company_id = ?", txID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "DeleteTransaction", apperr.NotFoundf("transaction not found"))
		return
	}

	if !policy.Can(actor, policy.ActionTransactionDelete, txn.UserID) {
		apperr.Write(w, "DeleteTransaction", apperr.Forbiddenf("only the creator or an administrator can delete this transaction"))
		return
	}

	if err := db.DB.Delete(&txn).Error; err != nil {
		apperr.Write(w, "DeleteTransaction", apperr.Internalf(err, "failed to delete transaction"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type MonthlyTotal struct {
	Month int             `json:"month"`
	Type  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
}

// GetTotals sums completed transactions per month and type for a year.
func GetTotals(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetTotals", err)
		return
	}

	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			apperr.Write(w, "GetTotals", apperr.Validationf("year must be a number"))
			return
		}
		year = parsed
	}

	var totals []MonthlyTotal
	err = db.DB.Raw(`
		SELECT EXTRACT(MONTH FROM transaction_date)::int AS month,
		       type,
		       COALESCE(SUM(amount), 0) AS total
		FROM finance.transactions
		WHERE company_id = ?
		  AND status = ?
		  AND deleted_at IS NULL
		  AND EXTRACT(YEAR FROM transaction_date) = ?
		GROUP BY month, type
		ORDER BY month, type`,
		actor.CompanyID, StatusCompleted, year,
	).Scan(&totals).Error
	if err != nil {
		apperr.Write(w, "GetTotals", apperr.Internalf(err, "failed to compute totals"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"year": year, "totals": totals})
}

type DepartmentTotal struct {
	DepartmentID   uuid.UUID       `json:"department_id"`
	DepartmentName string          `json:"department_name"`
	Type           string          `json:"type"`
	Total          decimal.Decimal `json:"total"`
}

// GetDepartmentTotals sums completed transactions per department, linked
// through the transaction's category.
func GetDepartmentTotals(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetDepartmentTotals", err)
		return
	}

	var totals []DepartmentTotal
	err = db.DB.Raw(`
		SELECT d.id AS department_id,
		       d.name AS department_name,
		       t.type,
		       COALESCE(SUM(t.amount), 0) AS total
		FROM finance.transactions t
		JOIN accounts.categories c ON c.id = t.category_id
		JOIN accounts.departments d ON d.id = c.department_id
		WHERE t.company_id = ?
		  AND t.status = ?
		  AND t.deleted_at IS NULL
		GROUP BY d.id, d.name, t.type
		ORDER BY d.name, t.type`,
		actor.CompanyID, StatusCompleted,
	).Scan(&totals).Error
	if err != nil {
		apperr.Write(w, "GetDepartmentTotals", apperr.Internalf(err, "failed to compute department totals"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"totals": totals})
}
