package policy

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Actor is the authenticated principal a capability check runs against.
type Actor struct {
	ID            uuid.UUID
	Role          Role
	CompanyID     uuid.UUID
	Authenticated bool
}

type Action string

const (
	ActionBudgetCreate     Action = "budget.create"
	ActionBudgetUpdate     Action = "budget.update"
	ActionBudgetDelete     Action = "budget.delete"
	ActionBudgetStatistics Action = "budget.statistics"

	ActionRequestCreate  Action = "budget_request.create"
	ActionRequestUpdate  Action = "budget_request.update"
	ActionRequestDelete  Action = "budget_request.delete"
	ActionRequestApprove Action = "budget_request.approve"
	ActionRequestReject  Action = "budget_request.reject"

	ActionRequisitionCreate  Action = "requisition.create"
	ActionRequisitionApprove Action = "requisition.approve"
	ActionRequisitionReject  Action = "requisition.reject"

	ActionCategoryCreate   Action = "category.create"
	ActionCategoryUpdate   Action = "category.update"
	ActionCategoryDelete   Action = "category.delete"
	ActionDepartmentCreate Action = "department.create"
	ActionDepartmentUpdate Action = "department.update"
	ActionDepartmentDelete Action = "department.delete"
	ActionUserCreate       Action = "user.create"
	ActionUserUpdate       Action = "user.update"

	ActionClientCreate   Action = "client.create"
	ActionClientUpdate   Action = "client.update"
	ActionClientDelete   Action = "client.delete"
	ActionSupplierCreate Action = "supplier.create"
	ActionSupplierUpdate Action = "supplier.update"
	ActionSupplierDelete Action = "supplier.delete"

	ActionTransactionCreate Action = "transaction.create"
	ActionTransactionUpdate Action = "transaction.update"
	ActionTransactionDelete Action = "transaction.delete"
)

type requirement struct {
	adminOnly bool
	// ownerAllowed lets a non-admin act on resources they created.
	ownerAllowed bool
	// anyUser lets any authenticated user act regardless of ownership.
	anyUser bool
}

var rules = map[Action]requirement{
	ActionBudgetCreate:     {adminOnly: true},
	ActionBudgetUpdate:     {adminOnly: true},
	ActionBudgetDelete:     {adminOnly: true},
	ActionBudgetStatistics: {adminOnly: true},

	ActionRequestCreate:  {anyUser: true},
	ActionRequestUpdate:  {ownerAllowed: true},
	ActionRequestDelete:  {ownerAllowed: true},
	ActionRequestApprove: {adminOnly: true},
	ActionRequestReject:  {adminOnly: true},

	ActionRequisitionCreate:  {anyUser: true},
	ActionRequisitionApprove: {adminOnly: true},
	ActionRequisitionReject:  {adminOnly: true},

	ActionCategoryCreate:   {adminOnly: true},
	ActionCategoryUpdate:   {adminOnly: true},
	ActionCategoryDelete:   {adminOnly: true},
	ActionDepartmentCreate: {adminOnly: true},
	ActionDepartmentUpdate: {adminOnly: true},
	ActionDepartmentDelete: {adminOnly: true},
	ActionUserCreate:       {adminOnly: true},
	ActionUserUpdate:       {adminOnly: true},

	ActionClientCreate:   {anyUser: true},
	ActionClientUpdate:   {ownerAllowed: true},
	ActionClientDelete:   {ownerAllowed: true},
	ActionSupplierCreate: {anyUser: true},
	ActionSupplierUpdate: {ownerAllowed: true},
	ActionSupplierDelete: {ownerAllowed: true},

	ActionTransactionCreate: {anyUser: true},
	ActionTransactionUpdate: {ownerAllowed: true},
	ActionTransactionDelete: {ownerAllowed: true},
}

// Can reports whether actor may perform action on a resource created by
// ownerID (uuid.Nil when the resource has no owner). Admins pass every
// rule; unknown actions and unauthenticated actors are always denied.
func Can(actor Actor, action Action, ownerID uuid.UUID) bool {
	if !actor.Authenticated {
		return false
	}

	req, ok := rules[action]
	if !ok {
		return false
	}

	if actor.Role == RoleAdmin {
		return true
	}
	if req.adminOnly {
		return false
	}
	if req.anyUser {
		return true
	}
	if req.ownerAllowed {
		return ownerID != uuid.Nil && actor.ID == ownerID
	}
	return false
}
