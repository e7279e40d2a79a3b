package budget

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ---- Budgets ----

func CreateBudget(w http.ResponseWriter, r *http.Request) {
	actor, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateBudget", err)
		return
	}
	if !policy.Can(actor, policy.ActionBudgetCreate, uuid.Nil) {
		apperr.Write(w, "CreateBudget", apperr.Forbiddenf("only administrators can create budgets"))
		return
	}

	var input struct {
		CategoryID uuid.UUID       `json:"category_id"`
		MaxAmount  decimal.Decimal `json:"max_amount"`
		StartDate  time.Time       `json:"start_date"`
		EndDate    time.Time       `json:"end_date"`
		Status     string          `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "CreateBudget", apperr.Validationf("invalid request body"))
		return
	}

	if input.MaxAmount.IsNegative() {
		apperr.Write(w, "CreateBudget", apperr.Validationf("max_amount must not be negative"))
		return
	}
	if input.EndDate.Before(input.StartDate) {
		apperr.Write(w, "CreateBudget", apperr.Validationf("end_date must not be before start_date"))
		return
	}
	if input.Status == "" {
		input.Status = "active"
	}
	if input.Status != "active" && input.Status != "inactive" && input.Status != "expired" {
		apperr.Write(w, "CreateBudget", apperr.Validationf("status must be active, inactive or expired"))
		return
	}

	var category org.Category
	if err := db.DB.First(&category, "id = ? AND company_id = ?", input.CategoryID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "CreateBudget", apperr.NotFoundf("category not found"))
		return
	}

	b := Budget{
		CompanyID:  actor.CompanyID,
		CategoryID: input.CategoryID,
		UserID:     user.ID,
		MaxAmount:  input.MaxAmount,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Status:     input.Status,
	}

	if err := db.DB.Create(&b).Error; err != nil {
		apperr.Write(w, "CreateBudget", apperr.Internalf(err, "failed to create budget"))
		return
	}

	db.DB.Preload("Category").First(&b, "id = ?", b.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"budget": b})
}

func ListBudgets(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListBudgets", err)
		return
	}

	query := db.DB.Where("company_id = ?", actor.CompanyID).Preload("Category")
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var budgets []Budget
	if err := query.Order("created_at DESC").Find(&budgets).Error; err != nil {
		apperr.Write(w, "ListBudgets", apperr.Internalf(err, "failed to fetch budgets"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
}

func GetBudget(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetBudget", err)
		return
	}

	budgetID := chi.URLParam(r, "budget_id")

	var b Budget
	if err := db.DB.Preload("Category").First(&b, "id = ? AND company_id = ?", budgetID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "GetBudget", apperr.NotFoundf("budget not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"budget": b})
}

func GetBudgetsByCategory(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetBudgetsByCategory", err)
		return
	}

	categoryID := chi.URLParam(r, "category_id")

	var budgets []Budget
	if err := db.DB.Preload("Category").
		Where("category_id = ? AND company_id = ?", categoryID, actor.CompanyID).
		Find(&budgets).Error; err != nil {
		apperr.Write(w, "GetBudgetsByCategory", apperr.Internalf(err, "failed to fetch budgets"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
}

func UpdateBudget(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateBudget", err)
		return
	}
	if !policy.Can(actor, policy.ActionBudgetUpdate, uuid.Nil) {
		apperr.Write(w, "UpdateBudget", apperr.Forbiddenf("only administrators can update budgets"))
		return
	}

	budgetID := chi.URLParam(r, "budget_id")

	var b Budget
	if err := db.DB.First(&b, "id = ? AND company_id = ?", budgetID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateBudget", apperr.NotFoundf("budget not found"))
		return
	}

	var updates struct {
		CategoryID *uuid.UUID       `json:"category_id,omitempty"`
		MaxAmount  *decimal.Decimal `json:"max_amount,omitempty"`
		StartDate  *time.Time       `json:"start_date,omitempty"`
		EndDate    *time.Time       `json:"end_date,omitempty"`
		Status     *string          `json:"status,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateBudget", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.CategoryID != nil {
		var category org.Category
		if err := db.DB.First(&category, "id = ? AND company_id = ?", *updates.CategoryID, actor.CompanyID).Error; err != nil {
			apperr.Write(w, "UpdateBudget", apperr.NotFoundf("category not found"))
			return
		}
		updateMap["category_id"] = *updates.CategoryID
	}
	if updates.MaxAmount != nil {
		if updates.MaxAmount.IsNegative() {
			apperr.Write(w, "UpdateBudget", apperr.Validationf("max_amount must not be negative"))
			return
		}
		updateMap["max_amount"] = *updates.MaxAmount
	}
	startDate, endDate := b.StartDate, b.EndDate
	if updates.StartDate != nil {
		startDate = *updates.StartDate
		updateMap["start_date"] = *updates.StartDate
	}
	if updates.EndDate != nil {
		endDate = *updates.EndDate
		updateMap["end_date"] = *updates.EndDate
	}
	if endDate.Before(startDate) {
		apperr.Write(w, "UpdateBudget", apperr.Validationf("end_date must not be before start_date"))
		return
	}
	if updates.Status != nil {
		if *updates.Status != "active" && *updates.Status != "inactive" && *updates.Status != "expired" {
			apperr.Write(w, "UpdateBudget", apperr.Validationf("status must be active, inactive or expired"))
			return
		}
		updateMap["status"] = *updates.Status
	}

	if err := db.DB.Model(&b).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateBudget", apperr.Internalf(err, "failed to update budget"))
		return
	}

	db.DB.Preload("Category").First(&b, "id = ?", b.ID)
	writeJSON(w, http.StatusOK, map[string]any{"budget": b})
}

func DeleteBudget(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteBudget", err)
		return
	}
	if !policy.Can(actor, policy.ActionBudgetDelete, uuid.Nil) {
		apperr.Write(w, "DeleteBudget", apperr.Forbiddenf("only administrators can delete budgets"))
		return
	}

	budgetID := chi.URLParam(r, "budget_id")

	result := db.DB.Delete(&Budget{}, "id = ? AND company_id = ?", budgetID, actor.CompanyID)
	if result.Error != nil {
		apperr.Write(w, "DeleteBudget", apperr.Internalf(result.Error, "failed to delete budget"))
		return
	}
	if result.RowsAffected == 0 {
		apperr.Write(w, "DeleteBudget", apperr.NotFoundf("budget not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAvailableBudget exposes the ledger: raw and floored availability for
// a category, optionally with the owning department's overall figures.
func GetAvailableBudget(w http.ResponseWriter, r *http.Request) {
	_, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetAvailableBudget", err)
		return
	}

	categoryID, err := uuid.Parse(r.URL.Query().Get("category_id"))
	if err != nil {
		apperr.Write(w, "GetAvailableBudget", apperr.Validationf("category_id is required"))
		return
	}

	avail, lerr := AvailableForCategory(db.DB, categoryID)
	if lerr != nil {
		apperr.Write(w, "GetAvailableBudget", apperr.Internalf(lerr, "failed to compute availability"))
		return
	}

	response := map[string]any{
		"category_id":       categoryID,
		"total_budget":      avail.Total,
		"total_approved":    avail.Approved,
		"available_budget":  avail.Raw,
		"available_display": avail.Floored,
	}

	if deptParam := r.URL.Query().Get("department_id"); deptParam != "" {
		departmentID, err := uuid.Parse(deptParam)
		if err != nil {
			apperr.Write(w, "GetAvailableBudget", apperr.Validationf("department_id is invalid"))
			return
		}

		var dept org.Department
		if err := db.DB.First(&dept, "id = ?", departmentID).Error; err != nil {
			apperr.Write(w, "GetAvailableBudget", apperr.NotFoundf("department not found"))
			return
		}

		deptAvail, lerr := AvailableForDepartment(db.DB, departmentID)
		if lerr != nil {
			apperr.Write(w, "GetAvailableBudget", apperr.Internalf(lerr, "failed to compute department availability"))
			return
		}

		response["department"] = map[string]any{
			"id":                departmentID,
			"name":              dept.Name,
			"budget":            deptAvail.Total,
			"approved":          deptAvail.Approved,
			"available":         deptAvail.Raw,
			"available_display": deptAvail.Floored,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// ---- Budget requests ----

func ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListRequests", err)
		return
	}

	query := db.DB.Where("company_id = ?", actor.CompanyID).
		Preload("Category").Preload("Reviewer")
	if actor.Role != policy.RoleAdmin {
		query = query.Where("user_id = ?", actor.ID)
	}

	var requests []BudgetRequest
	if err := query.Order("request_date DESC").Find(&requests).Error; err != nil {
		apperr.Write(w, "ListRequests", apperr.Internalf(err, "failed to fetch budget requests"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateRequest", err)
		return
	}

	var input CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "CreateRequest", apperr.Validationf("invalid request body"))
		return
	}

	request, err := CreateRequest(db.DB, notifier, user, input)
	if err != nil {
		apperr.Write(w, "CreateRequest", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"request": request})
}

func ApproveRequestHandler(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ApproveRequest", err)
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "request_id"))
	if err != nil {
		apperr.Write(w, "ApproveRequest", apperr.Validationf("invalid request id"))
		return
	}

	result, aerr := Approve(db.DB, notifier, requestID, user)
	if aerr != nil {
		apperr.Write(w, "ApproveRequest", aerr)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "RejectRequest", err)
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "request_id"))
	if err != nil {
		apperr.Write(w, "RejectRequest", apperr.Validationf("invalid request id"))
		return
	}

	request, rerr := Reject(db.DB, notifier, requestID, user)
	if rerr != nil {
		apperr.Write(w, "RejectRequest", rerr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"request": request})
}

func UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateRequest", err)
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "request_id"))
	if err != nil {
		apperr.Write(w, "UpdateRequest", apperr.Validationf("invalid request id"))
		return
	}

	var input UpdateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "UpdateRequest", apperr.Validationf("invalid request body"))
		return
	}

	request, uerr := UpdateRequest(db.DB, notifier, requestID, user, input)
	if uerr != nil {
		apperr.Write(w, "UpdateRequest", uerr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"request": request})
}

func DeleteRequestHandler(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteRequest", err)
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "request_id"))
	if err != nil {
		apperr.Write(w, "DeleteRequest", apperr.Validationf("invalid request id"))
		return
	}

	if err := DeleteRequest(db.DB, requestID, user); err != nil {
		apperr.Write(w, "DeleteRequest", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---- Summary views ----

func StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "Statistics", err)
		return
	}
	if !policy.Can(actor, policy.ActionBudgetStatistics, uuid.Nil) {
		apperr.Write(w, "Statistics", apperr.Forbiddenf("only administrators can view statistics"))
		return
	}

	rows, serr := Statistics(db.DB, actor.CompanyID)
	if serr != nil {
		apperr.Write(w, "Statistics", serr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"statistics": rows})
}

func EmergencyFundHandler(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "EmergencyFund", err)
		return
	}
	if !policy.Can(actor, policy.ActionBudgetStatistics, uuid.Nil) {
		apperr.Write(w, "EmergencyFund", apperr.Forbiddenf("only administrators can view the emergency fund"))
		return
	}

	report, ferr := EmergencyFund(db.DB, memoStore, actor.CompanyID, figureTTL, directionTTL)
	if ferr != nil {
		apperr.Write(w, "EmergencyFund", ferr)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
