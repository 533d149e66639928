package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gmgenove/attendance-checker/config"
	"github.com/gmgenove/attendance-checker/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
	if err := Seed(DB); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

// Migrate creates/updates every table we own. Shared with tests, which run
// it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ScheduleEntry{},
		&models.AttendanceRecord{},
		&models.Setting{},
		&models.Holiday{},
	)
}
