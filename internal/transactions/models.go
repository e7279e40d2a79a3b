package transactions

import (
	"time"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/directory"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TypeIncome   = "income"
	TypeExpense  = "expense"
	TypeTransfer = "transfer"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Transaction struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CompanyID       uuid.UUID       `json:"company_id" gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null"`
	Type            string          `json:"type" gorm:"not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Description     string          `json:"description"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty" gorm:"type:uuid"`
	SupplierID      *uuid.UUID      `json:"supplier_id,omitempty" gorm:"type:uuid"`
	ClientID        *uuid.UUID      `json:"client_id,omitempty" gorm:"type:uuid"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"not null"`
	Status          string          `json:"status" gorm:"not null;default:completed"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	PaymentTags     pq.StringArray  `json:"payment_tags" gorm:"type:text[]"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`

	Category *org.Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Supplier *directory.Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Client   *directory.Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	User     *auth.User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Invoices []Invoice           `json:"invoices,omitempty" gorm:"foreignKey:TransactionID"`
}

type Invoice struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	TransactionID uuid.UUID      `json:"transaction_id" gorm:"type:uuid;not null;index"`
	FileURL       string         `json:"file_url" gorm:"not null"`
	Type          string         `json:"type" gorm:"not null"`
	InvoiceNumber string         `json:"invoice_number"`
	Status        string         `json:"status" gorm:"not null;default:pending"`
	DueDate       *time.Time     `json:"due_date,omitempty"`
	Notes         string         `json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Transaction) TableName() string { return "finance.transactions" }
func (Invoice) TableName() string     { return "finance.invoices" }
