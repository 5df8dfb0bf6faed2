package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skincareshop/database"
	"github.com/skincareshop/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// HashPassword returns the bcrypt hash stored for a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AuthService registers and authenticates admin users
type AuthService struct {
	pool *database.Pool
	log  zerolog.Logger
}

// NewAuthService creates an auth service
func NewAuthService(pool *database.Pool, log zerolog.Logger) *AuthService {
	return &AuthService{pool: pool, log: log.With().Str("service", "auth").Logger()}
}

func credentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", invalidf("username and password are required")
	}
	return username, nil
}

// Register creates a user with a hashed password
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username, err := credentials(username, password)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, classify("hash password", err)
	}

	user := models.User{Username: username, PasswordHash: hash}
	err = s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invalidf("username already exists, please choose another")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, classify("register", err)
	}
	s.log.Info().Str("username", username).Msg("user registered")
	return &user, nil
}

// Authenticate checks a username and password pair
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username, err := credentials(username, password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.pool.Do(ctx, func(db *gorm.DB) error {
		return db.Where("username = ?", username).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, classify("authenticate", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("username", username).Msg("failed login")
		return nil, ErrUnauthorized
	}
	return &user, nil
}
