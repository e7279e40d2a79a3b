package requisition

import (
	"time"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/directory"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type PurchaseRequest struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UID             string          `json:"requisition_uid" gorm:"uniqueIndex;not null"`
	CompanyID       uuid.UUID       `json:"company_id" gorm:"type:uuid;not null;index"`
	DepartmentID    uuid.UUID       `json:"department_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null"`
	SupplierID      *uuid.UUID      `json:"supplier_id,omitempty" gorm:"type:uuid"`
	ClientID        *uuid.UUID      `json:"client_id,omitempty" gorm:"type:uuid"`
	Title           string          `json:"title" gorm:"not null"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	Justification   string          `json:"justification" gorm:"not null"`
	Priority        string          `json:"priority" gorm:"not null;default:medium"`
	Status          string          `json:"status" gorm:"not null;default:Pending"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID      `json:"reviewed_by,omitempty" gorm:"type:uuid"`
	RequestDate     time.Time       `json:"request_date" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items       []PurchaseRequestItem       `json:"items" gorm:"foreignKey:PurchaseRequestID"`
	Attachments []PurchaseRequestAttachment `json:"attachments" gorm:"foreignKey:PurchaseRequestID"`
	Department  *org.Department             `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Supplier    *directory.Supplier         `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Client      *directory.Client           `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Requester   *auth.User                  `json:"requester,omitempty" gorm:"foreignKey:UserID"`
	Reviewer    *auth.User                  `json:"reviewer,omitempty" gorm:"foreignKey:ReviewedBy"`
}

type PurchaseRequestItem struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PurchaseRequestID uuid.UUID       `json:"purchase_request_id" gorm:"type:uuid;not null;index"`
	Position          int             `json:"position" gorm:"not null"`
	Description       string          `json:"description" gorm:"not null"`
	Quantity          int             `json:"quantity" gorm:"not null;default:1"`
	UnitPrice         decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null"`
}

type PurchaseRequestAttachment struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PurchaseRequestID uuid.UUID `json:"purchase_request_id" gorm:"type:uuid;not null;index"`
	FilePath          string    `json:"file_path" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
}

// Sequence rows back UID generation. last_seq only ever grows, so UIDs
// are never reused even after a requisition is deleted by hand.
type Sequence struct {
	DepartmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year         int       `gorm:"primaryKey"`
	LastSeq      int       `gorm:"not null;default:0"`
}

func (PurchaseRequest) TableName() string           { return "procurement.purchase_requests" }
func (PurchaseRequestItem) TableName() string       { return "procurement.purchase_request_items" }
func (PurchaseRequestAttachment) TableName() string { return "procurement.purchase_request_attachments" }
func (Sequence) TableName() string                  { return "procurement.requisition_sequences" }
