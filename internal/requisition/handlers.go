package requisition

import (
	"encoding/json"
	"net/http"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func ListRequisitions(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListRequisitions", err)
		return
	}

	query := db.DB.Where("company_id = ?", actor.CompanyID).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Attachments").
		Preload("Department").Preload("Supplier").Preload("Client").
		Preload("Requester").Preload("Reviewer")
	if actor.Role != policy.RoleAdmin {
		query = query.Where("user_id = ?", actor.ID)
	}

	var requisitions []PurchaseRequest
	if err := query.Order("created_at ASC").Find(&requisitions).Error; err != nil {
		apperr.Write(w, "ListRequisitions", apperr.Internalf(err, "failed to fetch requisitions"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requisitions": requisitions})
}

func GetRequisition(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetRequisition", err)
		return
	}

	requestID := chi.URLParam(r, "requisition_id")

	var requisition PurchaseRequest
	query := db.DB.Where("id = ? AND company_id = ?", requestID, actor.CompanyID).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Attachments").
		Preload("Department").Preload("Supplier").Preload("Client").
		Preload("Requester").Preload("Reviewer")
	if actor.Role != policy.RoleAdmin {
		query = query.Where("user_id = ?", actor.ID)
	}
	if err := query.First(&requisition).Error; err != nil {
		apperr.Write(w, "GetRequisition", apperr.NotFoundf("requisition not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requisition": requisition})
}

func CreateRequisition(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateRequisition", err)
		return
	}

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "CreateRequisition", apperr.Validationf("invalid request body"))
		return
	}

	requisition, cerr := Create(db.DB, notifier, user, input)
	if cerr != nil {
		apperr.Write(w, "CreateRequisition", cerr)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"requisition": requisition})
}

func ApproveRequisition(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ApproveRequisition", err)
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "requisition_id"))
	if err != nil {
		apperr.Write(w, "ApproveRequisition", apperr.Validationf("invalid requisition id"))
		return
	}

	requisition, aerr := Approve(db.DB, notifier, requestID, user)
	if aerr != nil {
		apperr.Write(w, "ApproveRequisition", aerr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requisition": requisition})
}

func RejectRequisition(w http.ResponseWriter, r *http.Request) {
	_, user, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "RejectRequisition", err)
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "requisition_id"))
	if err != nil {
		apperr.Write(w, "RejectRequisition", apperr.Validationf("invalid requisition id"))
		return
	}

	var input struct {
		RejectionReason string `json:"rejection_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "RejectRequisition", apperr.Validationf("invalid request body"))
		return
	}

	requisition, rerr := Reject(db.DB, notifier, requestID, user, input.RejectionReason)
	if rerr != nil {
		apperr.Write(w, "RejectRequisition", rerr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requisition": requisition})
}
