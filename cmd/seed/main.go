package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skincareshop/config"
	"github.com/skincareshop/database"
	"github.com/skincareshop/logging"
	"github.com/skincareshop/models"
	"github.com/skincareshop/services"
)

func main() {
	// Define flags
	force := flag.Bool("force", false, "Force re-seed by clearing existing data")
	help := flag.Bool("help", false, "Show help message")
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if !cfg.EnvFileLoaded {
		log.Info().Msg("no .env file found, using environment only")
	}
	log.Info().Str("driver", cfg.Database.Driver).Str("database", cfg.Database.DBName).Msg("🌱 starting database seeding")

	db, err := database.Open(&cfg.Database, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.CheckConnection(db); err != nil {
		log.Fatal().Err(err).Msg("database connection check failed")
	}

	if *force {
		log.Warn().Msg("⚠️  force flag enabled, clearing existing data")
		if err := database.ClearData(db); err != nil {
			log.Fatal().Err(err).Msg("failed to clear data")
		}
	}

	hash, err := services.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash admin password")
	}
	admin := models.User{Username: cfg.Auth.AdminUsername, PasswordHash: hash}
	if err := database.SeedData(db, admin, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	// Show statistics
	for _, model := range models.AllModels() {
		var count int64
		db.Model(model).Count(&count)
		fmt.Printf("  %-25T: %d rows\n", model, count)
	}

	log.Info().Msg("✨ seeding completed successfully")
}

func showHelp() {
	fmt.Println("Database Seeding Tool")
	fmt.Println("====================")
	fmt.Println("\nUsage:")
	fmt.Println("  go run cmd/seed/main.go [flags]")
	fmt.Println("\nFlags:")
	fmt.Println("  -force    Force re-seed by clearing existing data")
	fmt.Println("  -help     Show this help message")
	fmt.Println("\nEnvironment:")
	fmt.Println("  ADMIN_USERNAME  admin login to create (default admin)")
	fmt.Println("  ADMIN_PASSWORD  its password (default admin123)")
	fmt.Println("\nExamples:")
	fmt.Println("  # Seed empty database")
	fmt.Println("  go run cmd/seed/main.go")
	fmt.Println("\n  # Force re-seed (clear and re-insert data)")
	fmt.Println("  go run cmd/seed/main.go -force")
}
