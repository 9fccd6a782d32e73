package repository

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/applyr/applyr/internal/domain"
)

// Open connects to Postgres and migrates the schema. TranslateError is on so
// unique-constraint violations surface as gorm.ErrDuplicatedKey regardless of
// driver.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
		&domain.Vacancy{},
		&domain.Stage{},
		&domain.Favorite{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
