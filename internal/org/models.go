package org

import (
	"time"

	"github.com/google/uuid"
)

type Department struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category groups budgets and spending. The department reference is the
// canonical linkage for every department-scoped figure.
type Category struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"department_id"`
	Name         string    `gorm:"not null" json:"name"`
	Type         string    `gorm:"not null;default:'expense'" json:"type"` // expense, investment
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (Department) TableName() string { return "accounts.departments" }
func (Category) TableName() string   { return "accounts.categories" }
