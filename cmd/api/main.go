package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cookbook/backend/config"
	"github.com/cookbook/backend/internal/api"
	"github.com/cookbook/backend/internal/cache"
	"github.com/cookbook/backend/internal/database"
	"github.com/cookbook/backend/internal/middleware"
	"github.com/cookbook/backend/internal/router"
	"github.com/cookbook/backend/internal/server"
	"github.com/cookbook/backend/internal/service"
	"github.com/cookbook/backend/internal/task"
)

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

	var healthCheck func(c *gin.Context) error
	if cfg.DBHost != "" {
		healthDB, err := database.New(cfg)
		if err != nil {
			logrus.Fatalf("failed to open health-check connection: %v", err)
		}
		healthCheck = func(c *gin.Context) error {
			return healthDB.HealthCheck(c.Request.Context())
		}
	}

	var likeCache *cache.LikeCache
	var rateLimit *middleware.RateLimiter
	if cfg.HasRedis() {
		redisClient, err := database.NewRedisClient(cfg)
		if err != nil {
			logrus.Fatalf("failed to connect to redis: %v", err)
		}
		likeCache = cache.NewLikeCache(redisClient)
		rateLimit = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := task.NewRunner(64)

	ledger := service.NewLedgerService(db, likeCache)
	catalog := service.NewCatalogService(db, ledger)
	feeds := service.NewFeedService(catalog, ledger, runner)
	auth := service.NewAuthService(db, cfg.JWTSecret)

	s3Config, err := config.NewS3Config(ctx)
	if err != nil {
		logrus.Fatalf("failed to configure S3: %v", err)
	}
	var images *service.ImageService
	if s3Config != nil {
		if err := s3Config.SetupBucketPolicy(ctx); err != nil {
			logrus.Warnf("failed to apply bucket policy: %v", err)
		}
		images = service.NewImageService(s3Config)
	}

	var createLimiter gin.HandlerFunc
	if rateLimit != nil {
		createLimiter = rateLimit.RateLimitMiddleware()
	}

	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(auth),
		Profile: api.NewProfileHandler(auth),
		Recipe:  api.NewRecipeHandler(catalog, ledger, feeds, createLimiter),
		Feed:    api.NewFeedHandler(feeds),
		Image:   api.NewImageHandler(images),
	}

	engine := router.SetupRouter(handlers, auth, healthCheck)
	srv := server.New(cfg, engine)

	// The runner outlives the HTTP server: once Run returns the context is
	// cancelled and Start drains whatever toggles are still queued.
	g := new(errgroup.Group)
	g.Go(func() error {
		runner.Start(ctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return srv.Run()
	})
	if err := g.Wait(); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
