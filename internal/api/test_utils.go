package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cookbook/backend/internal/database"
	"github.com/cookbook/backend/internal/middleware"
	"github.com/cookbook/backend/internal/models"
	"github.com/cookbook/backend/internal/service"
	"github.com/cookbook/backend/internal/task"
	"github.com/cookbook/backend/internal/types"
)

// TestEnv holds the test database and services backing a test router.
type TestEnv struct {
	DB          *gorm.DB
	AuthService *service.AuthService
	Ledger      *service.LedgerService
	Catalog     *service.CatalogService
	Feeds       *service.FeedService
}

// SetupTestEnv creates an in-memory database with the full service stack.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	runner := task.NewRunner(16)
	ctx, cancel := context.WithCancel(context.Background())
	go runner.Start(ctx)
	t.Cleanup(cancel)

	ledger := service.NewLedgerService(db, nil)
	catalog := service.NewCatalogService(db, ledger)
	feeds := service.NewFeedService(catalog, ledger, runner)

	return &TestEnv{
		DB:          db,
		AuthService: service.NewAuthService(db, "test-secret"),
		Ledger:      ledger,
		Catalog:     catalog,
		Feeds:       feeds,
	}
}

// SetupTestRouter builds a router with the same route layout as production.
func SetupTestRouter(t *testing.T) (*gin.Engine, *TestEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := SetupTestEnv(t)

	authHandler := NewAuthHandler(env.AuthService)
	profileHandler := NewProfileHandler(env.AuthService)
	recipeHandler := NewRecipeHandler(env.Catalog, env.Ledger, env.Feeds, nil)
	feedHandler := NewFeedHandler(env.Feeds)
	imageHandler := NewImageHandler(nil)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(env.AuthService))
	profileHandler.RegisterRoutes(protected)
	recipeHandler.RegisterRoutes(protected)
	feedHandler.RegisterRoutes(protected)
	imageHandler.RegisterRoutes(protected)

	return router, env
}

// CreateTestUserAndToken inserts a user and returns its ID and a valid token.
func CreateTestUserAndToken(t *testing.T, env *TestEnv, email string) (int64, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Email:        email,
		Username:     "cook-" + email,
		PasswordHash: string(hashed),
	}
	if err := env.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := env.AuthService.GenerateToken(&types.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return user.ID, token
}

// CreateTestRecipe inserts a recipe owned by authorID and returns it.
func CreateTestRecipe(t *testing.T, env *TestEnv, authorID int64, name string) models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		Name:         name,
		Instructions: "Mix and bake.",
		Ingredients:  "flour, eggs",
		Complexity:   models.ComplexityBeginner,
		Servings:     2,
		CategoryID:   models.CategoryDinner,
		AuthorID:     authorID,
	}
	if err := env.DB.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}

// PerformRequest makes an HTTP request against the test router.
func PerformRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	router.ServeHTTP(w, req)
	return w
}
