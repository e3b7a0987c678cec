package database

import (
	"context"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the catalog schema. Parents are migrated
// before the junction table that references them.
func Migrate(ctx context.Context, db *gorm.DB) error {
	log.Info("Migrating database schema")
	return db.WithContext(ctx).AutoMigrate(
		&models.Category{},
		&models.Ingredient{},
		&models.Pizza{},
		&models.PizzaIngredient{},
	)
}
