package main

import (
	"github.com/sirupsen/logrus"

	"github.com/cookbook/backend/config"
	"github.com/cookbook/backend/internal/database"
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

	logrus.Info("migrations applied")
}
