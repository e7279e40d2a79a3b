package directory

import (
	"log"

	"github.com/centravo/budget-backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "directory"); err != nil {
		log.Fatal("Failed to ensure schema directory: ", err)
	}

	if err := db.DB.AutoMigrate(&Supplier{}, &Client{}); err != nil {
		log.Fatal("Failed to auto-migrate directory tables: ", err)
	}
}
