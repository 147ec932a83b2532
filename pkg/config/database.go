package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
)

var DB *gorm.DB

// AllModels is the full schema. Shared with the test helpers so hermetic
// databases match production.
func AllModels() []interface{} {
	return []interface{}{
		&models.Launch{},
		&models.LaunchContributor{},
		&models.LaunchNameRecord{},
		&models.LaunchEvent{},
		&models.AssetBalance{},
		&models.AssetAllowance{},
		&models.RewardTokenInfo{},
		&models.VestingSchedule{},
		&models.ExchangePair{},
		&models.OracleObservation{},
	}
}

// InitDB connects to Postgres and migrates the schema.
func InitDB() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db

	if err := DB.AutoMigrate(AllModels()...); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
}
