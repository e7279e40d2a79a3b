package org

import (
	"log"

	"github.com/centravo/budget-backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "accounts"); err != nil {
		log.Fatal("Failed to ensure schema accounts: ", err)
	}

	if err := db.DB.AutoMigrate(&Department{}, &Category{}); err != nil {
		log.Fatal("Failed to auto-migrate org tables: ", err)
	}
}
