package org

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ---- Departments ----

func CreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateDepartment", err)
		return
	}
	if !policy.Can(actor, policy.ActionDepartmentCreate, uuid.Nil) {
		apperr.Write(w, "CreateDepartment", apperr.Forbiddenf("only administrators can create departments"))
		return
	}

	var dept Department
	if err := json.NewDecoder(r.Body).Decode(&dept); err != nil {
		apperr.Write(w, "CreateDepartment", apperr.Validationf("invalid request body"))
		return
	}
	if dept.Name == "" {
		apperr.Write(w, "CreateDepartment", apperr.Validationf("name is required"))
		return
	}

	dept.ID = uuid.Nil
	dept.CompanyID = actor.CompanyID
	dept.Active = true

	if err := db.DB.Create(&dept).Error; err != nil {
		apperr.Write(w, "CreateDepartment", apperr.Internalf(err, "failed to create department"))
		return
	}

	writeJSON(w, http.StatusCreated, dept)
}

// ListDepartments is open to any authenticated user, scoped to their company.
func ListDepartments(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListDepartments", err)
		return
	}

	var depts []Department
	if err := db.DB.Where("company_id = ?", actor.CompanyID).Order("name ASC").Find(&depts).Error; err != nil {
		apperr.Write(w, "ListDepartments", apperr.Internalf(err, "failed to fetch departments"))
		return
	}

	writeJSON(w, http.StatusOK, depts)
}

func UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateDepartment", err)
		return
	}
	if !policy.Can(actor, policy.ActionDepartmentUpdate, uuid.Nil) {
		apperr.Write(w, "UpdateDepartment", apperr.Forbiddenf("only administrators can update departments"))
		return
	}

	deptID := chi.URLParam(r, "department_id")

	var dept Department
	if err := db.DB.First(&dept, "id = ? AND company_id = ?", deptID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateDepartment", apperr.NotFoundf("department not found"))
		return
	}

	var updates struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
		Active      *bool   `json:"active,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateDepartment", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.Name != nil {
		updateMap["name"] = *updates.Name
	}
	if updates.Description != nil {
		updateMap["description"] = *updates.Description
	}
	if updates.Active != nil {
		updateMap["active"] = *updates.Active
	}

	if err := db.DB.Model(&dept).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateDepartment", apperr.Internalf(err, "failed to update department"))
		return
	}

	writeJSON(w, http.StatusOK, dept)
}

func DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteDepartment", err)
		return
	}
	if !policy.Can(actor, policy.ActionDepartmentDelete, uuid.Nil) {
		apperr.Write(w, "DeleteDepartment", apperr.Forbiddenf("only administrators can delete departments"))
		return
	}

	deptID := chi.URLParam(r, "department_id")

	result := db.DB.Delete(&Department{}, "id = ? AND company_id = ?", deptID, actor.CompanyID)
	if result.Error != nil {
		apperr.Write(w, "DeleteDepartment", apperr.Internalf(result.Error, "failed to delete department"))
		return
	}
	if result.RowsAffected == 0 {
		apperr.Write(w, "DeleteDepartment", apperr.NotFoundf("department not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---- Categories ----

func CreateCategory(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateCategory", err)
		return
	}
	if !policy.Can(actor, policy.ActionCategoryCreate, uuid.Nil) {
		apperr.Write(w, "CreateCategory", apperr.Forbiddenf("only administrators can create categories"))
		return
	}

	var cat Category
	if err := json.NewDecoder(r.Body).Decode(&cat); err != nil {
		apperr.Write(w, "CreateCategory", apperr.Validationf("invalid request body"))
		return
	}
	if cat.Name == "" || cat.DepartmentID == uuid.Nil {
		apperr.Write(w, "CreateCategory", apperr.Validationf("name and department_id are required"))
		return
	}
	if cat.Type == "" {
		cat.Type = "expense"
	}
	if cat.Type != "expense" && cat.Type != "investment" {
		apperr.Write(w, "CreateCategory", apperr.Validationf("type must be expense or investment"))
		return
	}

	var dept Department
	if err := db.DB.First(&dept, "id = ? AND company_id = ?", cat.DepartmentID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "CreateCategory", apperr.NotFoundf("department not found"))
		return
	}

	cat.ID = uuid.Nil
	cat.CompanyID = actor.CompanyID

	if err := db.DB.Create(&cat).Error; err != nil {
		apperr.Write(w, "CreateCategory", apperr.Internalf(err, "failed to create category"))
		return
	}

	writeJSON(w, http.StatusCreated, cat)
}

func ListCategories(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListCategories", err)
		return
	}

	query := db.DB.Where("company_id = ?", actor.CompanyID).Preload("Department")
	if deptID := r.URL.Query().Get("department_id"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}

	var cats []Category
	if err := query.Order("name ASC").Find(&cats).Error; err != nil {
		apperr.Write(w, "ListCategories", apperr.Internalf(err, "failed to fetch categories"))
		return
	}

	writeJSON(w, http.StatusOK, cats)
}

func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateCategory", err)
		return
	}
	if !policy.Can(actor, policy.ActionCategoryUpdate, uuid.Nil) {
		apperr.Write(w, "UpdateCategory", apperr.Forbiddenf("only administrators can update categories"))
		return
	}

	catID := chi.URLParam(r, "category_id")

	var cat Category
	if err := db.DB.First(&cat, "id = ? AND company_id = ?", catID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateCategory", apperr.NotFoundf("category not found"))
		return
	}

	var updates struct {
		Name         *string    `json:"name,omitempty"`
		Type         *string    `json:"type,omitempty"`
		DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateCategory", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.Name != nil {
		updateMap["name"] = *updates.Name
	}
	if updates.Type != nil {
		if *updates.Type != "expense" && *updates.Type != "investment" {
			apperr.Write(w, "UpdateCategory", apperr.Validationf("type must be expense or investment"))
			return
		}
		updateMap["type"] = *updates.Type
	}
	if updates.DepartmentID != nil {
		var dept Department
		if err := db.DB.First(&dept, "id = ? AND company_id = ?", *updates.DepartmentID, actor.CompanyID).Error; err != nil {
			apperr.Write(w, "UpdateCategory", apperr.NotFoundf("department not found"))
			return
		}
		updateMap["department_id"] = *updates.DepartmentID
	}

	if err := db.DB.Model(&cat).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateCategory", apperr.Internalf(err, "failed to update category"))
		return
	}

	writeJSON(w, http.StatusOK, cat)
}

func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "DeleteCategory", err)
		return
	}
	if !policy.Can(actor, policy.ActionCategoryDelete, uuid.Nil) {
		apperr.Write(w, "DeleteCategory", apperr.Forbiddenf("only administrators can delete categories"))
		return
	}

	catID := chi.URLParam(r, "category_id")

	result := db.DB.Delete(&Category{}, "id = ? AND company_id = ?", catID, actor.CompanyID)
	if result.Error != nil {
		apperr.Write(w, "DeleteCategory", apperr.Internalf(result.Error, "failed to delete category"))
		return
	}
	if result.RowsAffected == 0 {
		apperr.Write(w, "DeleteCategory", apperr.NotFoundf("category not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---- Users ----

// CreateUser lets an admin add a user to their own company.
func CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, admin, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "CreateUser", err)
		return
	}
	if !policy.Can(actor, policy.ActionUserCreate, uuid.Nil) {
		apperr.Write(w, "CreateUser", apperr.Forbiddenf("only administrators can create users"))
		return
	}

	var input struct {
		FirstName    string     `json:"first_name"`
		LastName     string     `json:"last_name"`
		Email        string     `json:"email"`
		Password     string     `json:"password"`
		Role         string     `json:"role"`
		DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperr.Write(w, "CreateUser", apperr.Validationf("invalid request body"))
		return
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" {
		apperr.Write(w, "CreateUser", apperr.Validationf("email and password are required"))
		return
	}
	if input.Role == "" {
		input.Role = "user"
	}
	if input.Role != "admin" && input.Role != "user" {
		apperr.Write(w, "CreateUser", apperr.Validationf("role must be admin or user"))
		return
	}

	var existing auth.User
	if err := db.DB.First(&existing, "email = ?", input.Email).Error; err == nil {
		apperr.Write(w, "CreateUser", apperr.Validationf("email already taken"))
		return
	}

	if input.DepartmentID != nil {
		var dept Department
		if err := db.DB.First(&dept, "id = ? AND company_id = ?", *input.DepartmentID, actor.CompanyID).Error; err != nil {
			apperr.Write(w, "CreateUser", apperr.NotFoundf("department not found"))
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.Write(w, "CreateUser", apperr.Internalf(err, "failed to hash password"))
		return
	}

	user := auth.User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		HashedPassword: string(hashed),
		Role:           input.Role,
		Active:         true,
		CompanyID:      admin.CompanyID,
		DepartmentID:   input.DepartmentID,
		CreatedBy:      &admin.ID,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		apperr.Write(w, "CreateUser", apperr.Internalf(err, "failed to create user"))
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "ListUsers", err)
		return
	}

	var users []auth.User
	if err := db.DB.Where("company_id = ?", actor.CompanyID).Order("created_at ASC").Find(&users).Error; err != nil {
		apperr.Write(w, "ListUsers", apperr.Internalf(err, "failed to fetch users"))
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateUser", err)
		return
	}
	if !policy.Can(actor, policy.ActionUserUpdate, uuid.Nil) {
		apperr.Write(w, "UpdateUser", apperr.Forbiddenf("only administrators can update users"))
		return
	}

	userID := chi.URLParam(r, "user_id")

	var user auth.User
	if err := db.DB.First(&user, "id = ? AND company_id = ?", userID, actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateUser", apperr.NotFoundf("user not found"))
		return
	}

	var updates struct {
		FirstName    *string    `json:"first_name,omitempty"`
		LastName     *string    `json:"last_name,omitempty"`
		Role         *string    `json:"role,omitempty"`
		Active       *bool      `json:"active,omitempty"`
		DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateUser", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.FirstName != nil {
		updateMap["first_name"] = *updates.FirstName
	}
	if updates.LastName != nil {
		updateMap["last_name"] = *updates.LastName
	}
	if updates.Role != nil {
		if *updates.Role != "admin" && *updates.Role != "user" {
			apperr.Write(w, "UpdateUser", apperr.Validationf("role must be admin or user"))
			return
		}
		updateMap["role"] = *updates.Role
	}
	if updates.Active != nil {
		updateMap["active"] = *updates.Active
	}
	if updates.DepartmentID != nil {
		var dept Department
		if err := db.DB.First(&dept, "id = ? AND company_id = ?", *updates.DepartmentID, actor.CompanyID).Error; err != nil {
			apperr.Write(w, "UpdateUser", apperr.NotFoundf("department not found"))
			return
		}
		updateMap["department_id"] = *updates.DepartmentID
	}

	if err := db.DB.Model(&user).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateUser", apperr.Internalf(err, "failed to update user"))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ---- Companies ----

func GetCompany(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "GetCompany", err)
		return
	}

	var company auth.Company
	if err := db.DB.First(&company, "id = ?", actor.CompanyID).Error; err != nil {
		apperr.Write(w, "GetCompany", apperr.NotFoundf("company not found"))
		return
	}

	writeJSON(w, http.StatusOK, company)
}

func UpdateCompany(w http.ResponseWriter, r *http.Request) {
	actor, _, err := auth.CurrentActor(r)
	if err != nil {
		apperr.Write(w, "UpdateCompany", err)
		return
	}
	if actor.Role != policy.RoleAdmin {
		apperr.Write(w, "UpdateCompany", apperr.Forbiddenf("only administrators can update the company"))
		return
	}

	var company auth.Company
	if err := db.DB.First(&company, "id = ?", actor.CompanyID).Error; err != nil {
		apperr.Write(w, "UpdateCompany", apperr.NotFoundf("company not found"))
		return
	}

	var updates struct {
		Name         *string `json:"name,omitempty"`
		ContactEmail *string `json:"contact_email,omitempty"`
		ContactPhone *string `json:"contact_phone,omitempty"`
		SizeBucket   *string `json:"size_bucket,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		apperr.Write(w, "UpdateCompany", apperr.Validationf("invalid request body"))
		return
	}

	updateMap := make(map[string]interface{})
	if updates.Name != nil {
		updateMap["name"] = *updates.Name
	}
	if updates.ContactEmail != nil {
		updateMap["contact_email"] = *updates.ContactEmail
	}
	if updates.ContactPhone != nil {
		updateMap["contact_phone"] = *updates.ContactPhone
	}
	if updates.SizeBucket != nil {
		updateMap["size_bucket"] = *updates.SizeBucket
	}

	if err := db.DB.Model(&company).Updates(updateMap).Error; err != nil {
		apperr.Write(w, "UpdateCompany", apperr.Internalf(err, "failed to update company"))
		return
	}

	writeJSON(w, http.StatusOK, company)
}
