package database

import (
	"fmt"
	"log"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/domain/plans"
	"manuflix-backend/internal/domain/subscriptions"
	"manuflix-backend/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(dsn string) *gorm.DB {
	// TranslateError maps unique-violations to gorm.ErrDuplicatedKey,
	// which the subscription store relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&plans.Plan{},
		&billing.Transaction{},
		&subscriptions.UserSubscription{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
	return db
}
