package budget

import (
	"database/sql"
	"errors"
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/notify"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot reports a remaining-budget figure before and after a transition.
type Snapshot struct {
	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
}

type DepartmentSnapshot struct {
	Name   string          `json:"name"`
	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
}

type BudgetInfo struct {
	RequestedAmount  decimal.Decimal     `json:"requested_amount"`
	TotalBudget      Snapshot            `json:"total_budget"`
	DepartmentBudget *DepartmentSnapshot `json:"department_budget,omitempty"`
}

type ApprovalResult struct {
	Request    BudgetRequest `json:"request"`
	BudgetInfo BudgetInfo    `json:"budget_info"`
}

// Approve drives a budget request from pending to approved. The
// availability checks and the status write run inside one serializable
// transaction so two concurrent approvals cannot both pass the check
// against the same pool.
func Approve(gdb *gorm.DB, notifier notify.Notifier, requestID uuid.UUID, reviewer *auth.User) (*ApprovalResult, error) {
	var result ApprovalResult

	err := gdb.Transaction(func(tx *gorm.DB) error {
		var request BudgetRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, "id = ? AND company_id = ?", requestID, reviewer.CompanyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("budget request not found")
		}
		if err != nil {
			return apperr.Internalf(err, "failed to load budget request")
		}

		if request.Status != StatusPending {
			return apperr.InvalidStatef("budget request is already %s", request.Status)
		}

		// Existence and state come back before the role gate.
		actor := policy.Actor{
			ID:            reviewer.ID,
			Role:          policy.Role(reviewer.Role),
			CompanyID:     reviewer.CompanyID,
			Authenticated: true,
		}
		if !policy.Can(actor, policy.ActionRequestApprove, uuid.Nil) {
			return apperr.Forbiddenf("only administrators can approve budget requests")
		}

		avail, err := AvailableForCategory(tx, request.CategoryID)
		if err != nil {
			return apperr.Internalf(err, "failed to compute category availability")
		}
		if avail.Raw.LessThan(request.RequestedAmount) {
			return apperr.New(apperr.InsufficientBudget,
				"insufficient budget: requested %s but only %s is available",
				request.RequestedAmount.String(), avail.Floored.String()).
				WithDetail("requested_amount", request.RequestedAmount).
				WithDetail("available_budget", avail.Floored)
		}

		var category org.Category
		if err := tx.Preload("Department").First(&category, "id = ?", request.CategoryID).Error; err != nil {
			return apperr.Internalf(err, "failed to load category")
		}

		deptAvail, err := AvailableForDepartment(tx, category.DepartmentID)
		if err != nil {
			return apperr.Internalf(err, "failed to compute department availability")
		}
		if deptAvail.Raw.LessThan(request.RequestedAmount) {
			return apperr.New(apperr.InsufficientDepartmentBudget,
				"insufficient budget for department %s: requested %s but only %s is available",
				category.Department.Name, request.RequestedAmount.String(), deptAvail.Floored.String()).
				WithDetail("requested_amount", request.RequestedAmount).
				WithDetail("department", category.Department.Name).
				WithDetail("available_budget", deptAvail.Floored)
		}

		request.Status = StatusApproved
		request.ReviewedBy = &reviewer.ID
		if err := tx.Save(&request).Error; err != nil {
			return apperr.Internalf(err, "failed to persist approval")
		}

		result = ApprovalResult{
			Request: request,
			BudgetInfo: BudgetInfo{
				RequestedAmount: request.RequestedAmount,
				TotalBudget: Snapshot{
					Before: avail.Raw,
					After:  avail.Raw.Sub(request.RequestedAmount),
				},
				DepartmentBudget: &DepartmentSnapshot{
					Name:   category.Department.Name,
					Before: deptAvail.Raw,
					After:  deptAvail.Raw.Sub(request.RequestedAmount),
				},
			},
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	notifier.Emit(notify.ChannelBudgetRequests, notify.EventRequestApproved, result.Request)
	return &result, nil
}

// Reject moves a pending request to rejected. Approval is one-way: an
// already-approved request cannot be rejected. Budget requests do not
// store a rejection reason.
func Reject(gdb *gorm.DB, notifier notify.Notifier, requestID uuid.UUID, reviewer *auth.User) (*BudgetRequest, error) {
	var request BudgetRequest

	err := gdb.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, "id = ? AND company_id = ?", requestID, reviewer.CompanyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("budget request not found")
		}
		if err != nil {
			return apperr.Internalf(err, "failed to load budget request")
		}

		if request.Status != StatusPending {
			return apperr.InvalidStatef("budget request is already %s", request.Status)
		}

		actor := policy.Actor{
			ID:            reviewer.ID,
			Role:          policy.Role(reviewer.Role),
			CompanyID:     reviewer.CompanyID,
			Authenticated: true,
		}
		if !policy.Can(actor, policy.ActionRequestReject, uuid.Nil) {
			return apperr.Forbiddenf("only administrators can reject budget requests")
		}

		request.Status = StatusRejected
		request.ReviewedBy = &reviewer.ID
		if err := tx.Save(&request).Error; err != nil {
			return apperr.Internalf(err, "failed to persist rejection")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifier.Emit(notify.ChannelBudgetRequests, notify.EventRequestRejected, request)
	return &request, nil
}

type CreateRequestInput struct {
	CategoryID      uuid.UUID       `json:"category_id"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	Description     string          `json:"description"`
}

// CreateRequest validates and persists a new pending request.
func CreateRequest(gdb *gorm.DB, notifier notify.Notifier, requester *auth.User, input CreateRequestInput) (*BudgetRequest, error) {
	if err := ValidateAmount(input.RequestedAmount); err != nil {
		return nil, err
	}
	description, err := ValidateDescription(input.Description)
	if err != nil {
		return nil, err
	}

	var category org.Category
	if err := gdb.First(&category, "id = ? AND company_id = ?", input.CategoryID, requester.CompanyID).Error; err != nil {
		return nil, apperr.NotFoundf("category not found")
	}

	request := BudgetRequest{
		CompanyID:       requester.CompanyID,
		UserID:          requester.ID,
		CategoryID:      input.CategoryID,
		RequestedAmount: input.RequestedAmount,
		Description:     description,
		RequestDate:     time.Now(),
		Status:          StatusPending,
	}

	if err := gdb.Create(&request).Error; err != nil {
		return nil, apperr.Internalf(err, "failed to create budget request")
	}

	notifier.Emit(notify.ChannelBudgetRequests, notify.EventNewRequest, request)
	return &request, nil
}

type UpdateRequestInput struct {
	CategoryID      *uuid.UUID       `json:"category_id,omitempty"`
	RequestedAmount *decimal.Decimal `json:"requested_amount,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Status          *string          `json:"status,omitempty"`
}

// UpdateRequest edits a request in place. Only the requester or an admin
// may update; a non-admin sending a status field has that field silently
// dropped rather than rejected. Changing requested_amount does not
// re-trigger an availability check; that happens at approval time.
func UpdateRequest(gdb *gorm.DB, notifier notify.Notifier, requestID uuid.UUID, actorUser *auth.User, input UpdateRequestInput) (*BudgetRequest, error) {
	var request BudgetRequest
	err := gdb.First(&request, "id = ? AND company_id = ?", requestID, actorUser.CompanyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("budget request not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "failed to load budget request")
	}

	actor := policy.Actor{
		ID:            actorUser.ID,
		Role:          policy.Role(actorUser.Role),
		CompanyID:     actorUser.CompanyID,
		Authenticated: true,
	}
	if !policy.Can(actor, policy.ActionRequestUpdate, request.UserID) {
		return nil, apperr.Forbiddenf("only the requester or an administrator can update this request")
	}

	if input.Status != nil && actor.Role != policy.RoleAdmin {
		// Regular users cannot touch status; the field is dropped, the
		// rest of the patch still applies.
		input.Status = nil
	}

	updateMap := make(map[string]interface{})
	if input.RequestedAmount != nil {
		if err := ValidateAmount(*input.RequestedAmount); err != nil {
			return nil, err
		}
		updateMap["requested_amount"] = *input.RequestedAmount
	}
	if input.Description != nil {
		clean, err := ValidateDescription(*input.Description)
		if err != nil {
			return nil, err
		}
		updateMap["description"] = clean
	}
	if input.CategoryID != nil {
		var category org.Category
		if err := gdb.First(&category, "id = ? AND company_id = ?", *input.CategoryID, actorUser.CompanyID).Error; err != nil {
			return nil, apperr.NotFoundf("category not found")
		}
		updateMap["category_id"] = *input.CategoryID
	}
	if input.Status != nil {
		if *input.Status != StatusPending && *input.Status != StatusApproved && *input.Status != StatusRejected {
			return nil, apperr.Validationf("status must be pending, approved or rejected")
		}
		updateMap["status"] = *input.Status
	}

	if len(updateMap) > 0 {
		if err := gdb.Model(&request).Updates(updateMap).Error; err != nil {
			return nil, apperr.Internalf(err, "failed to update budget request")
		}
	}

	notifier.Emit(notify.ChannelBudgetRequests, notify.EventRequestUpdated, request)
	return &request, nil
}

// DeleteRequest hard-deletes a request. No notification is emitted.
func DeleteRequest(gdb *gorm.DB, requestID uuid.UUID, actorUser *auth.User) error {
	var request BudgetRequest
	err := gdb.First(&request, "id = ? AND company_id = ?", requestID, actorUser.CompanyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("budget request not found")
	}
	if err != nil {
		return apperr.Internalf(err, "failed to load budget request")
	}

	actor := policy.Actor{
		ID:            actorUser.ID,
		Role:          policy.Role(actorUser.Role),
		CompanyID:     actorUser.CompanyID,
		Authenticated: true,
	}
	if !policy.Can(actor, policy.ActionRequestDelete, request.UserID) {
		return apperr.Forbiddenf("only the requester or an administrator can delete this request")
	}

	if err := gdb.Delete(&request).Error; err != nil {
		return apperr.Internalf(err, "failed to delete budget request")
	}
	return nil
}
