package budget

import (
	"log"
	"time"

	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/notify"
)

var (
	notifier     notify.Notifier = notify.LogNotifier{}
	memoStore                    = NewMemoStore()
	figureTTL                    = time.Hour
	directionTTL                 = 3 * time.Hour
)

// Configure wires the notifier and summary cache lifetimes. Call before
// serving; defaults are a log-only notifier and hourly figure refresh.
func Configure(n notify.Notifier, figure, direction time.Duration) {
	if n != nil {
		notifier = n
	}
	if figure > 0 {
		figureTTL = figure
	}
	if direction > 0 {
		directionTTL = direction
	}
}

func Init() {
	if err := db.EnsureSchema(db.DB, "finance"); err != nil {
		log.Fatal("Failed to ensure schema finance: ", err)
	}

	if err := db.DB.AutoMigrate(&Budget{}, &BudgetRequest{}); err != nil {
		log.Fatal("Failed to auto-migrate finance tables: ", err)
	}
}
