package db

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nevisai/platform/internal/models"
)

var db_ *gorm.DB

// Connect establishes a connection to the Supabase Postgres database.
func Connect() {
	dsn := os.Getenv("SUPABASE_DSN")

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			Colorful:      false,
		},
	)

	var err error
	db_, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:    false,
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db_.AutoMigrate(
		&models.User{},
		&models.BrandProfile{},
		&models.GeneratedPost{},
		&models.Payment{},
		&models.CreditTransaction{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func GetDB() *gorm.DB {
	return db_
}

// SetDB swaps the package handle; used by tests that run against a throwaway DB.
func SetDB(d *gorm.DB) {
	db_ = d
}
