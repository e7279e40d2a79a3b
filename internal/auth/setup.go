package auth

import (
	"log"

	"github.com/centravo/budget-backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "accounts"); err != nil {
		log.Fatal("Failed to ensure schema accounts: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension: ", err)
	}

	if err := db.DB.AutoMigrate(&Company{}, &User{}, &Session{}); err != nil {
		log.Fatal("Failed to auto-migrate accounts tables: ", err)
	}
}
