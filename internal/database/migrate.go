package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cookbook/backend/internal/models"
)

// RunMigrations creates the schema and seeds the fixed category set.
func RunMigrations(db *gorm.DB) error {
	log.Printf("Running auto-migration (%s)", db.Dialector.Name())
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Recipe{},
		&models.Favourite{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return SeedCategories(db)
}

// SeedCategories inserts the enumerated categories, skipping ones that
// already exist.
func SeedCategories(db *gorm.DB) error {
	categories := []models.Category{
		{ID: models.CategoryBreakfast, Name: "Breakfast"},
		{ID: models.CategoryLunch, Name: "Lunch"},
		{ID: models.CategoryDinner, Name: "Dinner"},
		{ID: models.CategoryDessert, Name: "Dessert"},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}
