package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/models"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.AuthToken{}, &models.Product{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
