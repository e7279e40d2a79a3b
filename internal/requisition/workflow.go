package requisition

import (
	"errors"
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/budget"
	"github.com/centravo/budget-backend/internal/notify"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func actorFor(u *auth.User) policy.Actor {
	return policy.Actor{
		ID:            u.ID,
		Role:          policy.Role(u.Role),
		CompanyID:     u.CompanyID,
		Authenticated: true,
	}
}

func validPriority(p string) bool {
	switch p {
	case "low", "medium", "high", "urgent":
		return true
	}
	return false
}

type ItemInput struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateInput struct {
	Title         string          `json:"title"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Justification string          `json:"justification"`
	Priority      string          `json:"priority"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	ClientID      *uuid.UUID      `json:"client_id,omitempty"`
	Items         []ItemInput     `json:"items"`
	Attachments   []string        `json:"attachments,omitempty"`
}

// Create validates the input, checks that the requester's department is
// active, allocates a UID and persists the requisition with its line
// items in one transaction. The department check runs before the
// sequence is touched, so a rejected creation burns no number.
func Create(gdb *gorm.DB, notifier notify.Notifier, requester *auth.User, input CreateInput) (*PurchaseRequest, error) {
	if requester.DepartmentID == nil {
		return nil, apperr.Validationf("requester has no department")
	}
	if input.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if err := budget.ValidateAmount(input.TotalAmount); err != nil {
		return nil, err
	}
	justification, err := budget.ValidateDescription(input.Justification)
	if err != nil {
		return nil, err
	}
	if input.Priority == "" {
		input.Priority = "medium"
	}
	if !validPriority(input.Priority) {
		return nil, apperr.Validationf("priority must be low, medium, high or urgent")
	}
	if len(input.Items) == 0 {
		return nil, apperr.Validationf("at least one line item is required")
	}
	for i, item := range input.Items {
		if item.Description == "" {
			return nil, apperr.Validationf("item %d: description is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, apperr.Validationf("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, apperr.Validationf("item %d: unit_price must not be negative", i+1)
		}
	}

	var request PurchaseRequest

	err = gdb.Transaction(func(tx *gorm.DB) error {
		var dept org.Department
		err := tx.First(&dept, "id = ? AND company_id = ?", *requester.DepartmentID, requester.CompanyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("department not found")
		}
		if err != nil {
			return apperr.Internalf(err, "failed to load department")
		}
		if !dept.Active {
			return apperr.New(apperr.DepartmentInactive,
				"department %s is inactive and cannot raise requisitions", dept.Name)
		}

		now := time.Now()
		uid, err := nextUID(tx, dept.ID, dept.Name, now.Year())
		if err != nil {
			return apperr.Internalf(err, "failed to allocate requisition uid")
		}

		request = PurchaseRequest{
			UID:           uid,
			CompanyID:     requester.CompanyID,
			DepartmentID:  dept.ID,
			UserID:        requester.ID,
			SupplierID:    input.SupplierID,
			ClientID:      input.ClientID,
			Title:         input.Title,
			TotalAmount:   input.TotalAmount,
			Justification: justification,
			Priority:      input.Priority,
			Status:        StatusPending,
			RequestDate:   now,
		}
		for i, item := range input.Items {
			request.Items = append(request.Items, PurchaseRequestItem{
				Position:    i + 1,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			})
		}
		for _, path := range input.Attachments {
			request.Attachments = append(request.Attachments, PurchaseRequestAttachment{FilePath: path})
		}

		if err := tx.Create(&request).Error; err != nil {
			return apperr.Internalf(err, "failed to create requisition")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifier.Emit(notify.ChannelRequisitions, notify.EventNewRequest, request)
	return &request, nil
}

// Approve moves a pending requisition to Approved. Requisitions carry
// no budget ceiling of their own, so unlike budget requests there is no
// availability check, only the state machine and the admin gate.
func Approve(gdb *gorm.DB, notifier notify.Notifier, requestID uuid.UUID, reviewer *auth.User) (*PurchaseRequest, error) {
	var request PurchaseRequest

	err := gdb.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, "id = ? AND company_id = ?", requestID, reviewer.CompanyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("requisition not found")
		}
		if err != nil {
			return apperr.Internalf(err, "failed to load requisition")
		}

		if request.Status != StatusPending {
			return apperr.InvalidStatef("requisition is already %s", request.Status)
		}

		// Existence and state come back before the role gate.
		if !policy.Can(actorFor(reviewer), policy.ActionRequisitionApprove, uuid.Nil) {
			return apperr.Forbiddenf("only administrators can approve requisitions")
		}

		request.Status = StatusApproved
		request.ReviewedBy = &reviewer.ID
		if err := tx.Save(&request).Error; err != nil {
			return apperr.Internalf(err, "failed to persist approval")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifier.Emit(notify.ChannelRequisitions, notify.EventRequestApproved, request)
	return &request, nil
}

// Reject moves a pending requisition to Rejected and stores the reason.
// Approval is one-way: an approved requisition cannot be rejected.
func Reject(gdb *gorm.DB, notifier notify.Notifier, requestID uuid.UUID, reviewer *auth.User, reason string) (*PurchaseRequest, error) {
	var request PurchaseRequest

	err := gdb.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, "id = ? AND company_id = ?", requestID, reviewer.CompanyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("requisition not found")
		}
		if err != nil {
			return apperr.Internalf(err, "failed to load requisition")
		}

		if request.Status != StatusPending {
			return apperr.InvalidStatef("requisition is already %s", request.Status)
		}

		if !policy.Can(actorFor(reviewer), policy.ActionRequisitionReject, uuid.Nil) {
			return apperr.Forbiddenf("only administrators can reject requisitions")
		}

		request.Status = StatusRejected
		request.ReviewedBy = &reviewer.ID
		if reason != "" {
			request.RejectionReason = &reason
		}
		if err := tx.Save(&request).Error; err != nil {
			return apperr.Internalf(err, "failed to persist rejection")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifier.Emit(notify.ChannelRequisitions, notify.EventRequestRejected, request)
	return &request, nil
}
