package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skincareshop/config"
	"github.com/skincareshop/database"
	"github.com/skincareshop/logging"
	"github.com/skincareshop/models"
)

func main() {
	// Command line flags
	var (
		drop    = flag.Bool("drop", false, "Drop all tables before migration")
		upgrade = flag.Bool("upgrade", true, "Rename and backfill columns left by older installs")
		help    = flag.Bool("help", false, "Show help")
	)

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

	log.Info().
		Str("driver", cfg.Database.Driver).
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("🚀 starting database migration")

	db, err := database.Open(&cfg.Database, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ failed to open database")
	}
	defer database.Close(db)

	if err := database.CheckConnection(db); err != nil {
		log.Fatal().Err(err).Msg("❌ database connection check failed")
	}

	if *drop {
		log.Warn().Msg("⚠️  dropping all tables")
		if err := database.DropAll(db); err != nil {
			log.Fatal().Err(err).Msg("❌ failed to drop tables")
		}
	}

	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("❌ failed to run migration")
	}

	if *upgrade && !*drop {
		if err := database.UpgradeLegacySchema(db, log); err != nil {
			log.Fatal().Err(err).Msg("❌ failed to upgrade legacy schema")
		}
	}

	for _, model := range models.AllModels() {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			log.Warn().Err(err).Msgf("could not count %T", model)
			continue
		}
		log.Info().Int64("rows", count).Msgf("  %T", model)
	}

	log.Info().Msg("✅ migration completed successfully")
}

func showHelp() {
	fmt.Println(`
Database Migration Tool for the Skincare Shop

Usage:
  go run cmd/migrate/main.go [options]

Options:
  -drop       Drop all tables before migration (WARNING: Data loss!)
  -upgrade    Rename total_amount to total and backfill totals and subtotals (default true)
  -help       Show this help message

Examples:
  # Create or update tables
  go run cmd/migrate/main.go

  # Drop all tables and recreate
  go run cmd/migrate/main.go -drop

Environment:
  Requires .env file or environment variables for database configuration:
  - DB_DRIVER (postgres, mysql, sqlite)
  - DB_HOST
  - DB_PORT
  - DB_USER
  - DB_PASSWORD
  - DB_NAME
  - DB_SOURCE (optional full DSN)`)
}
