package requisition

import (
	"log"

	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/notify"
)

var notifier notify.Notifier = notify.LogNotifier{}

func Configure(n notify.Notifier) {
	if n != nil {
		notifier = n
	}
}

func Init() {
	if err := db.EnsureSchema(db.DB, "procurement"); err != nil {
		log.Fatal("Failed to ensure schema procurement: ", err)
	}

	if err := db.DB.AutoMigrate(&PurchaseRequest{}, &PurchaseRequestItem{}, &PurchaseRequestAttachment{}, &Sequence{}); err != nil {
		log.Fatal("Failed to auto-migrate procurement tables: ", err)
	}
}
