package database

import (
	"StudyHub/internal/models"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and runs migrations.
// Environment variables win over config.yaml values.
func Connect() (*gorm.DB, error) {
	host := viper.GetString("DB_HOST")
	port := viper.GetString("DB_PORT")
	user := viper.GetString("DB_USER")
	password := viper.GetString("DB_PASSWORD")
	dbname := viper.GetString("DB_NAME")

	// Fallback to config.yaml for local development.
	if host == "" {
		host = viper.GetString("database.host")
		port = viper.GetString("database.port")
		user = viper.GetString("database.user")
		password = viper.GetString("database.password")
		dbname = viper.GetString("database.dbname")
	}

	if host == "" || port == "" || user == "" || dbname == "" {
		return nil, errors.New("database configuration is incomplete")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migrated successfully")

	return db, nil
}

// Migrate creates or updates the schema for all models. It is also used
// by tests against an in-memory database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.TestResult{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
