package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSecretKey signs sessions when SECRET_KEY is unset. Only
// development may run with it.
const DefaultSecretKey = "change-me"

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig

	// EnvFileLoaded reports whether a .env file was read
	EnvFileLoaded bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	Source     string
	PoolSize   int
	RetryDelay time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Environment string
	Port        string
	LogLevel    string
	UploadDir   string
}

// AuthConfig holds session configuration
type AuthConfig struct {
	SecretKey     string
	SessionTTL    time.Duration
	AdminUsername string
	AdminPassword string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env is fine; the caller decides whether to mention it
	envLoaded := godotenv.Load() == nil

	poolSize, err := getEnvInt("DB_POOL_SIZE", 20)
	if err != nil {
		return nil, err
	}
	if poolSize < 1 {
		return nil, fmt.Errorf("DB_POOL_SIZE must be positive, got %d", poolSize)
	}
	retryMs, err := getEnvInt("DB_POOL_RETRY_MS", 100)
	if err != nil {
		return nil, err
	}
	ttlHours, err := getEnvInt("SESSION_TTL_HOURS", 12)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", ""),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "skincareshop"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			Source:     getEnv("DB_SOURCE", ""),
			PoolSize:   poolSize,
			RetryDelay: time.Duration(retryMs) * time.Millisecond,
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			UploadDir:   getEnv("UPLOAD_DIR", "web/static/uploads"),
		},
		Auth: AuthConfig{
			SecretKey:     getEnv("SECRET_KEY", DefaultSecretKey),
			SessionTTL:    time.Duration(ttlHours) * time.Hour,
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		},
	}

	switch config.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}

	if config.Auth.SecretKey == "" {
		config.Auth.SecretKey = DefaultSecretKey
	}
	if config.Auth.SecretKey == DefaultSecretKey && !config.App.IsDevelopment() {
		return nil, fmt.Errorf("SECRET_KEY must be set when APP_ENV is %q", config.App.Environment)
	}

	config.EnvFileLoaded = envLoaded
	return config, nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// GetDSN returns the database connection string for the configured driver
func (c *DatabaseConfig) GetDSN() string {
	if c.Source != "" {
		return c.Source
	}
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.portOr("3306"), c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.portOr("5432"), c.User, c.Password, c.DBName, c.SSLMode)
	}
}

func (c *DatabaseConfig) portOr(fallback string) string {
	if c.Port == "" {
		return fallback
	}
	return c.Port
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
