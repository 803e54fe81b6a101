package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cookbook/backend/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Recipe{},
		&models.Favourite{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, id int64, email string) models.User {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        email,
		Username:     email,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createRecipe(t *testing.T, db *gorm.DB, id, authorID int64, name string) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		ID:           id,
		Name:         name,
		Instructions: "mix everything",
		Ingredients:  "flour, water",
		PrepTime:     "20 min",
		Complexity:   models.ComplexityBeginner,
		Servings:     2,
		CategoryID:   models.CategoryDinner,
		AuthorID:     authorID,
	}
	require.NoError(t, db.Create(&recipe).Error)
	return recipe
}
