package database

import (
	"log"

	"agency-backend/internal/config"
	"agency-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("[FATAL] could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("[FATAL] AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migrations applied.")
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	// Plans written before revisions were tracked start at 1.
	if db.Migrator().HasTable(&models.BusinessPlan{}) && !db.Migrator().HasColumn(&models.BusinessPlan{}, "revision") {
		log.Println("Adding business_plans.revision column...")
		if err := db.Exec("ALTER TABLE business_plans ADD COLUMN revision INTEGER NOT NULL DEFAULT 1").Error; err != nil {
			log.Printf("[WARN] could not add revision column (may already exist): %v", err)
		}
	}

	return db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.BusinessPlan{},
		&models.PlanSnapshot{},
		&models.Property{},
		&models.Contact{},
		&models.Activity{},
	)
}
