package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skincareshop/config"
	"github.com/skincareshop/database"
	"github.com/skincareshop/logging"
	"github.com/skincareshop/models"
	"github.com/skincareshop/services"
	"github.com/skincareshop/web"
	"github.com/skincareshop/web/handlers"
	"github.com/skincareshop/web/middleware"
)

func main() {
	// Command line flags
	var (
		migrate = flag.Bool("migrate", false, "Run database migration on startup")
		seed    = flag.Bool("seed", false, "Seed database with the admin account and sample data")
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
	if cfg.Auth.SecretKey == config.DefaultSecretKey {
		log.Warn().Msg("SECRET_KEY is not set, sessions are signed with the development default")
	}
	decimal.MarshalJSONWithoutQuotes = true

	queries := database.NewQueryLogger(200)
	db, err := database.Open(&cfg.Database, log, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	if err := database.CheckConnection(db); err != nil {
		log.Fatal().Err(err).Msg("database connection check failed")
	}

	if *migrate {
		log.Info().Msg("running database migration")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		if err := database.UpgradeLegacySchema(db, log); err != nil {
			log.Fatal().Err(err).Msg("failed to upgrade legacy schema")
		}
	}

	if *seed {
		if err := seedAdmin(db, cfg.Auth, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed database")
		}
	}

	// pool owns db from here on
	pool := database.NewPool(db, cfg.Database.PoolSize, cfg.Database.RetryDelay)
	defer pool.Close()

	uploads, err := handlers.NewUploads(cfg.App.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	h := &handlers.Handler{
		Orders:    services.NewOrderService(pool, log),
		Products:  services.NewProductService(pool, log),
		Customers: services.NewCustomerService(pool, log),
		Staff:     services.NewStaffService(pool, log, services.RandomHex),
		Auth:      services.NewAuthService(pool, log),
		Sessions:  middleware.NewSessionManager(cfg.Auth.SecretKey, cfg.Auth.SessionTTL),
		Queries:   queries,
		Uploads:   uploads,
		Log:       log,
	}

	server, err := web.NewServer(h, "web/static")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	// Start server in a goroutine
	go func() {
		if err := server.Start(cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedAdmin seeds the configured admin account and the starter catalogue
func seedAdmin(db *gorm.DB, auth config.AuthConfig, log zerolog.Logger) error {
	hash, err := services.HashPassword(auth.AdminPassword)
	if err != nil {
		return err
	}
	return database.SeedData(db, models.User{Username: auth.AdminUsername, PasswordHash: hash}, log)
}

func showHelp() {
	fmt.Println(`
Skincare Shop Admin Server

Usage:
  go run main.go [options]

Options:
  -migrate  Run GORM AutoMigrate and the legacy schema upgrade on startup
  -seed     Seed the admin account and a starter catalogue
  -help     Show this help message

Examples:
  # Start server only
  go run main.go

  # Start server with migration and seed
  go run main.go -migrate -seed

For full migration control, use:
  go run cmd/migrate/main.go

For full seed control, use:
  go run cmd/seed/main.go`)
}
