package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cookbook/backend/internal/api"
	"github.com/cookbook/backend/internal/middleware"
)

// Handlers collects the API handlers the router mounts.
type Handlers struct {
	Auth    *api.AuthHandler
	Profile *api.ProfileHandler
	Recipe  *api.RecipeHandler
	Feed    *api.FeedHandler
	Image   *api.ImageHandler
}

// SetupRouter configures the application routes. Everything under /api/v1
// except auth requires a valid bearer token. healthCheck, when non-nil,
// backs the /health endpoint; it should ping the store.
func SetupRouter(h Handlers, validator middleware.TokenValidator, healthCheck func(c *gin.Context) error) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.ErrorHandler())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if healthCheck != nil {
			if err := healthCheck(c); err != nil {
				c.JSON(503, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		h.Profile.RegisterRoutes(protected)
		h.Recipe.RegisterRoutes(protected)
		h.Feed.RegisterRoutes(protected)
		h.Image.RegisterRoutes(protected)
	}

	return router
}
