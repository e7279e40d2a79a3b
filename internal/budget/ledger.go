package budget

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Availability is the ledger answer to "how much is left to spend".
// Raw may be negative when a category is over-committed; Floored is the
// display value, clamped at zero.
type Availability struct {
	Total    decimal.Decimal `json:"total_budget"`
	Approved decimal.Decimal `json:"total_approved"`
	Raw      decimal.Decimal `json:"available_budget"`
	Floored  decimal.Decimal `json:"available_display"`
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func sumDecimal(tx *gorm.DB, query string, args ...any) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := tx.Raw(query, args...).Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// AvailableForCategory recomputes the category's remaining budget from
// scratch: active budget ceilings minus approved draws. Never cached.
func AvailableForCategory(tx *gorm.DB, categoryID uuid.UUID) (Availability, error) {
	total, err := sumDecimal(tx, `
		SELECT COALESCE(SUM(max_amount), 0)
		FROM finance.budgets
		WHERE status = 'active' AND category_id = ?`, categoryID)
	if err != nil {
		return Availability{}, err
	}

	approved, err := sumDecimal(tx, `
		SELECT COALESCE(SUM(requested_amount), 0)
		FROM finance.budget_requests
		WHERE status = 'approved' AND category_id = ?`, categoryID)
	if err != nil {
		return Availability{}, err
	}

	raw := total.Sub(approved)
	return Availability{Total: total, Approved: approved, Raw: raw, Floored: floorZero(raw)}, nil
}

// AvailableForDepartment computes the department-wide ceiling across every
// category the department owns. Budgets and requests are resolved through
// the category's department reference.
func AvailableForDepartment(tx *gorm.DB, departmentID uuid.UUID) (Availability, error) {
	total, err := sumDecimal(tx, `
		SELECT COALESCE(SUM(b.max_amount), 0)
		FROM finance.budgets b
		JOIN accounts.categories c ON c.id = b.category_id
		WHERE b.status = 'active' AND c.department_id = ?`, departmentID)
	if err != nil {
		return Availability{}, err
	}

	approved, err := sumDecimal(tx, `
		SELECT COALESCE(SUM(br.requested_amount), 0)
		FROM finance.budget_requests br
		JOIN accounts.categories c ON c.id = br.category_id
		WHERE br.status = 'approved' AND c.department_id = ?`, departmentID)
	if err != nil {
		return Availability{}, err
	}

	raw := total.Sub(approved)
	return Availability{Total: total, Approved: approved, Raw: raw, Floored: floorZero(raw)}, nil
}
