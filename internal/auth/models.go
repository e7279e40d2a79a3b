package auth

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant root; every user, department and category hangs
// off exactly one company.
type Company struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	SizeBucket   string    `gorm:"default:'small'" json:"size_bucket"` // small, medium, large
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"-" json:"password,omitempty"`
	HashedPassword string     `json:"-"`
	Role           string     `gorm:"default:'user'" json:"role"` // admin, user
	Active         bool       `gorm:"default:true" json:"active"`
	FirstUser      bool       `gorm:"default:false" json:"first_user"`
	CompanyID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	DepartmentID   *uuid.UUID `gorm:"type:uuid;index" json:"department_id,omitempty"`
	// CreatedBy is nil only for a company's bootstrap admin.
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (Company) TableName() string { return "accounts.companies" }
func (User) TableName() string    { return "accounts.users" }
func (Session) TableName() string { return "accounts.sessions" }
