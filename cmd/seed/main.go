// seed - fills a development database with demo accounts and content
package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/karloscodes/cartridge"
	"github.com/sirupsen/logrus"

	"mingle/internal/config"
	"mingle/internal/database"
	"mingle/internal/seeder"
)

func main() {
	users := flag.Int("users", 10, "number of demo users to create")
	postsPerUser := flag.Int("posts", 5, "number of posts per user")
	password := flag.String("password", "password123", "password shared by every demo account")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err == nil {
		log.Info("Loaded environment from .env")
	}

	cfg := config.GetConfig()
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	logger := cartridge.NewLogger(cfg, nil)
	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	if err := dbManager.MigrateDatabase(); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	s := seeder.NewSeeder(dbManager, logger, *users, *postsPerUser)
	if err := s.Seed(*password); err != nil {
		log.WithError(err).Error("Seeding failed")
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"users":        *users,
		"postsPerUser": *postsPerUser,
	}).Info("Demo data ready")
}
