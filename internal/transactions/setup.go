package transactions

import (
	"log"

	"github.com/centravo/budget-backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "finance"); err != nil {
		log.Fatal("Failed to ensure schema finance: ", err)
	}

	if err := db.DB.AutoMigrate(&Transaction{}, &Invoice{}); err != nil {
		log.Fatal("Failed to auto-migrate transaction tables: ", err)
	}
}
