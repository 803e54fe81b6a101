package main

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cookbook/backend/config"
	"github.com/cookbook/backend/internal/database"
	"github.com/cookbook/backend/internal/models"
)

type seedUser struct {
	email    string
	username string
	password string
}

var seedUsers = []seedUser{
	{"alice@example.com", "alice", "password123"},
	{"bob@example.com", "bob", "password123"},
}

type seedRecipe struct {
	name         string
	instructions string
	ingredients  string
	prepTime     string
	complexity   string
	servings     int
	categoryID   int64
	author       string
}

var seedRecipes = []seedRecipe{
	{
		name:         "Shakshuka",
		instructions: "Simmer tomatoes with paprika, crack eggs on top, cover until just set.",
		ingredients:  "tomatoes, eggs, paprika, onion, olive oil",
		prepTime:     "25 min",
		complexity:   models.ComplexityBeginner,
		servings:     2,
		categoryID:   models.CategoryBreakfast,
		author:       "alice",
	},
	{
		name:         "Chicken Caesar Wrap",
		instructions: "Grill the chicken, toss with dressing and lettuce, roll into tortillas.",
		ingredients:  "chicken breast, romaine, caesar dressing, tortillas, parmesan",
		prepTime:     "20 min",
		complexity:   models.ComplexityBeginner,
		servings:     2,
		categoryID:   models.CategoryLunch,
		author:       "alice",
	},
	{
		name:         "Beef Bourguignon",
		instructions: "Brown the beef, deglaze with wine, braise with vegetables for three hours.",
		ingredients:  "beef chuck, red wine, carrots, pearl onions, mushrooms, bacon",
		prepTime:     "3 h 30 min",
		complexity:   models.ComplexityAdvanced,
		servings:     6,
		categoryID:   models.CategoryDinner,
		author:       "bob",
	},
	{
		name:         "Chocolate Lava Cake",
		instructions: "Melt chocolate and butter, fold in eggs and flour, bake until edges set.",
		ingredients:  "dark chocolate, butter, eggs, sugar, flour",
		prepTime:     "35 min",
		complexity:   models.ComplexityIntermediate,
		servings:     4,
		categoryID:   models.CategoryDessert,
		author:       "bob",
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatalf("failed to run migrations: %v", err)
	}

	userIDs := make(map[string]int64, len(seedUsers))
	for _, u := range seedUsers {
		id, err := upsertUser(db, u)
		if err != nil {
			logrus.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		userIDs[u.username] = id
	}

	for _, r := range seedRecipes {
		if err := upsertRecipe(db, r, userIDs[r.author]); err != nil {
			logrus.Fatalf("failed to seed recipe %s: %v", r.name, err)
		}
	}

	logrus.Infof("seeded %d users and %d recipes", len(seedUsers), len(seedRecipes))
}

func upsertUser(db *gorm.DB, u seedUser) (int64, error) {
	var existing models.User
	err := db.Where("email = ?", u.email).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	user := models.User{
		Email:        u.email,
		Username:     u.username,
		PasswordHash: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

func upsertRecipe(db *gorm.DB, r seedRecipe, authorID int64) error {
	recipe := models.Recipe{
		Name:         r.name,
		Instructions: r.instructions,
		Ingredients:  r.ingredients,
		PrepTime:     r.prepTime,
		Complexity:   r.complexity,
		Servings:     r.servings,
		CategoryID:   r.categoryID,
		AuthorID:     authorID,
	}

	var count int64
	if err := db.Model(&models.Recipe{}).
		Where("name = ? AND author_id = ?", r.name, authorID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&recipe).Error
}
