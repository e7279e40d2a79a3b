package directory

import (
	"encoding/json"
	"net/http"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ---- Suppliers ----

func CreateSupplier(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateSupplier", err)
		return
	}
	if !policy.Can(actor, policy.ActionSupplierCreate, uuid.Nil) {
		apperr.Write(w, "CreateSupplier", apperr.Forbiddenf("not allowed"))
		return
	}

	var supplier Supplier
	if err := json.NewDecoder(r.Body).Decode(&supplier); err != nil {
		apperr.Write(w, "CreateSupplier", apperr.Validationf("invalid request body"))
		return
	}
	if supplier.Name == "" {
		apperr.Write(w, "CreateSupplier", apperr.Validationf("name is required"))
		return
	}

	supplier.ID = uuid.Nil
	supplier.CompanyID = actor.CompanyID
	supplier.CreatedBy = actor.ID
	supplier.Active = true

	if err := db.DB.Create(&supplier).Error; err != nil {
		apperr.Write(w, "CreateSupplier", apperr.Internalf(err, "failed to create supplier"))
		return
	}

	writeJSON(w, http.StatusCreated, supplier)
}

func ListSuppliers(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListSuppliers", err)
		return
	}

	var suppliers []Supplier
	if err := db.DB.Where("company_id = ?", actor.CompanyID).Order("name ASC").Find(&suppliers).Error; err != nil {
		apperr.Write(w, "ListSuppliers", apperr.Internalf(err, "failed to fetch suppliers"))
		return
	}

	writeJSON(w, http.StatusOK, suppliers)
}

func UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateSupplier", err)
		return
	}

	supplierID := chi.URLParam(r, "supplier_id")

	var supplier Supplier
	if err := db.DB.First(&supplier, "id = ? AND company_id = ?", supplierID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateSupplier", apperr.NotFoundf("supplier not found"))
		return
	}

	if !policy.Can(actor, policy.ActionSupplierUpdate, supplier.CreatedBy) {
		apperr.Write(w, "UpdateSupplier", apperr.Forbiddenf("only the creator or an administrator can update this supplier"))
		return
	}

	var updates struct {
		Name    *string `json:"name,omitempty"`
		Email   *string `json:"email,omitempty"`
		Phone   *string `json:"phone,omitempty"`
		Address *string `json:"address,omitempty"`
		TaxID   *string `json:"tax_id,omitempty"`
		Active  *bool   `json:"active,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateSupplier", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.Name != nil {
		updateMap["name"] = *updates.Name
	}
	if updates.Email != nil {
		updateMap["email"] = *updates.Email
	}
	if updates.Phone != nil {
		updateMap["phone"] = *updates.Phone
	}
	if updates.Address != nil {
		updateMap["address"] = *updates.Address
	}
	if updates.TaxID != nil {
		updateMap["tax_id"] = *updates.TaxID
	}
	if updates.Active != nil {
		updateMap["active"] = *updates.Active
	}

	if err := db.DB.Model(&supplier).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateSupplier", apperr.Internalf(err, "failed to update supplier"))
		return
	}

	writeJSON(w, http.StatusOK, supplier)
}

func DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteSupplier", err)
		return
	}

	supplierID := chi.URLParam(r, "supplier_id")

	var supplier Supplier
	if err := db.DB.First(&supplier, "id = ? AND company_id = ?", supplierID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "DeleteSupplier", apperr.NotFoundf("supplier not found"))
		return
	}

	if !policy.Can(actor, policy.ActionSupplierDelete, supplier.CreatedBy) {
		apperr.Write(w, "DeleteSupplier", apperr.Forbiddenf("only the creator or an administrator can delete this supplier"))
		return
	}

	if err := db.DB.Delete(&supplier).Error; err != nil {
		apperr.Write(w, "DeleteSupplier", apperr.Internalf(err, "failed to delete supplier"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---- Clients ----

func CreateClient(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateClient", err)
		return
	}
	if !policy.Can(actor, policy.ActionClientCreate, uuid.Nil) {
		apperr.Write(w, "CreateClient", apperr.Forbiddenf("not allowed"))
		return
	}

	var client Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		apperr.Write(w, "CreateClient", apperr.Validationf("invalid request body"))
		return
	}
	if client.Name == "" {
		apperr.Write(w, "CreateClient", apperr.Validationf("name is required"))
		return
	}

	client.ID = uuid.Nil
	client.CompanyID = actor.CompanyID
	client.CreatedBy = actor.ID
	client.Active = true

	if err := db.DB.Create(&client).Error; err != nil {
		apperr.Write(w, "CreateClient", apperr.Internalf(err, "failed to create client"))
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

func ListClients(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListClients", err)
		return
	}

	var clients []Client
	if err := db.DB.Where("company_id = ?", actor.CompanyID).Order("name ASC").Find(&clients).Error; err != nil {
		apperr.Write(w, "ListClients", apperr.Internalf(err, "failed to fetch clients"))
		return
	}

	writeJSON(w, http.StatusOK, clients)
}

func UpdateClient(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateClient", err)
		return
	}

	clientID := chi.URLParam(r, "client_id")

	var client Client
	if err := db.DB.First(&client, "id = ? AND company_id = ?", clientID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateClient", apperr.NotFoundf("client not found"))
		return
	}

	if !policy.Can(actor, policy.ActionClientUpdate, client.CreatedBy) {
		apperr.Write(w, "UpdateClient", apperr.Forbiddenf("only the creator or an administrator can update this client"))
		return
	}

	var updates struct {
		Name    *string `json:"name,omitempty"`
		Email   *string `json:"email,omitempty"`
		Phone   *string `json:"phone,omitempty"`
		Address *string `json:"address,omitempty"`
		Active  *bool   `json:"active,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateClient", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.Name != nil {
		updateMap["name"] = *updates.Name
	}
	if updates.Email != nil {
		updateMap["email"] = *updates.Email
	}
	if updates.Phone != nil {
		updateMap["phone"] = *updates.Phone
	}
	if updates.Address != nil {
		updateMap["address"] = *updates.Address
	}
	if updates.Active != nil {
		updateMap["active"] = *updates.Active
	}

	if err := db.DB.Model(&client).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateClient", apperr.Internalf(err, "failed to update client"))
		return
	}

	writeJSON(w, http.StatusOK, client)
}

func DeleteClient(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteClient", err)
		return
	}

	clientID := chi.URLParam(r, "client_id")

	var client Client
	if err := db.DB.First(&client, "id = ? AND company_id = ?", clientID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "DeleteClient", apperr.NotFoundf("client not found"))
		return
	}

	if !policy.Can(actor, policy.ActionClientDelete, client.CreatedBy) {
		apperr.Write(w, "DeleteClient", apperr.Forbiddenf("only the creator or an administrator can delete this client"))
		return
	}

	if err := db.DB.Delete(&client).Error; err != nil {
		apperr.Write(w, "DeleteClient", apperr.Internalf(err, "failed to delete client"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
