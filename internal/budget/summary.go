package budget

import (
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

var currencyPrinter = message.NewPrinter(language.English)

func formatCurrency(d decimal.Decimal) string {
	f, _ := d.Float64()
	return currencyPrinter.Sprintf("$%.2f", f)
}

// StatisticsRow aggregates budgets per category and status.
type StatisticsRow struct {
	CategoryID     uuid.UUID       `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	Status         string          `json:"status"`
	BudgetCount    int64           `json:"budget_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	FormattedTotal string          `json:"formatted_total"`
}

// Statistics returns budget counts and sums grouped by category and
// status for one company.
func Statistics(gdb *gorm.DB, companyID uuid.UUID) ([]StatisticsRow, error) {
	var rows []StatisticsRow
	err := gdb.Raw(`
		SELECT c.id AS category_id,
		       c.name AS category_name,
		       b.status AS status,
		       COUNT(*) AS budget_count,
		       COALESCE(SUM(b.max_amount), 0) AS total_amount
		FROM finance.budgets b
		JOIN accounts.categories c ON c.id = b.category_id
		WHERE b.company_id = ?
		GROUP BY c.id, c.name, b.status
		ORDER BY c.name, b.status`, companyID).Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internalf(err, "failed to compute statistics")
	}

	for i := range rows {
		rows[i].FormattedTotal = formatCurrency(rows[i].TotalAmount)
	}
	return rows, nil
}

// Figure delta statuses returned by the emergency fund view.
const (
	DeltaNew       = "new"
	DeltaIncreased = "increased"
	DeltaDecreased = "decreased"
	DeltaUnchanged = "unchanged"
)

type Figure struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
	Status    string          `json:"status"`
	ChangePct *float64        `json:"change_pct,omitempty"`
}

type EmergencyFundReport struct {
	TotalBudget   Figure `json:"total_budget"`
	TotalExpenses Figure `json:"total_expenses"`
	ReserveFund   Figure `json:"reserve_fund"`
	LastDirection string `json:"last_direction,omitempty"`
}

// compareFigure classifies value against the previous memoized value
// under key and re-memoizes it. An expired or missing entry yields "new".
func compareFigure(store *MemoStore, key string, value decimal.Decimal, ttl time.Duration) Figure {
	fig := Figure{
		Amount:    value,
		Formatted: formatCurrency(value),
		Status:    DeltaNew,
	}

	if prev, ok := store.Get(key); ok {
		previous, err := decimal.NewFromString(prev)
		if err == nil {
			switch {
			case value.GreaterThan(previous):
				fig.Status = DeltaIncreased
			case value.LessThan(previous):
				fig.Status = DeltaDecreased
			default:
				fig.Status = DeltaUnchanged
			}
			if !previous.IsZero() && fig.Status != DeltaUnchanged {
				pct, _ := value.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).Float64()
				fig.ChangePct = &pct
			}
		}
	}

	store.Set(key, value.String(), ttl)
	return fig
}

// EmergencyFund suggests a reserve of 10% of the company's active budget
// total, alongside total budget and completed-expense figures. Every
// figure carries a delta against the previous computation held in the
// memo store.
func EmergencyFund(gdb *gorm.DB, store *MemoStore, companyID uuid.UUID, figureTTL, directionTTL time.Duration) (*EmergencyFundReport, error) {
	totalBudget, err := sumDecimal(gdb, `
		SELECT COALESCE(SUM(max_amount), 0)
		FROM finance.budgets
		WHERE status = 'active' AND company_id = ?`, companyID)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to sum active budgets")
	}

	totalExpenses, err := sumDecimal(gdb, `
		SELECT COALESCE(SUM(amount), 0)
		FROM finance.transactions
		WHERE type = 'expense' AND status = 'completed'
		  AND company_id = ? AND deleted_at IS NULL`, companyID)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to sum completed expenses")
	}

	reserve := totalBudget.Mul(decimal.NewFromFloat(0.10)).Round(2)

	prefix := "emergency:" + companyID.String() + ":"
	report := &EmergencyFundReport{
		TotalBudget:   compareFigure(store, prefix+"total_budget", totalBudget, figureTTL),
		TotalExpenses: compareFigure(store, prefix+"total_expenses", totalExpenses, figureTTL),
		ReserveFund:   compareFigure(store, prefix+"reserve_fund", reserve, figureTTL),
	}

	// Rolling direction flag, display continuity only.
	direction := report.TotalBudget.Status
	if direction == DeltaNew || direction == DeltaUnchanged {
		if prev, ok := store.Get(prefix + "direction"); ok {
			direction = prev
		}
	}
	store.Set(prefix+"direction", direction, directionTTL)
	report.LastDirection = direction

	return report, nil
}
