package budget

import (
	"time"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is an allocated spending ceiling for a category over a period.
type Budget struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	MaxAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"max_amount"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	Status     string          `gorm:"not null;default:'active';index" json:"status"` // active, inactive, expired
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Category org.Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BudgetRequest is a draw against a category's budget. Status is terminal
// once approved or rejected.
type BudgetRequest struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	RequestedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"requested_amount"`
	Description     string          `gorm:"not null" json:"description"`
	RequestDate     time.Time       `json:"request_date"`
	Status          string          `gorm:"not null;default:'pending';index" json:"status"` // pending, approved, rejected
	ReviewedBy      *uuid.UUID      `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Category org.Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Reviewer *auth.User   `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func (Budget) TableName() string        { return "finance.budgets" }
func (BudgetRequest) TableName() string { return "finance.budget_requests" }
