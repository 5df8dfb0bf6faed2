package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skincareshop/database"
	"github.com/skincareshop/models"
	"gorm.io/gorm"
)

// CustomerInput holds the editable customer fields
type CustomerInput struct {
	FullName string `json:"full_name"`
	Code     string `json:"code"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Gender   string `json:"gender"`
}

func (in *CustomerInput) normalize() error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Code = strings.TrimSpace(in.Code)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.FullName == "" {
		return invalidf("full name is required")
	}
	return nil
}

// CustomerService manages customers
type CustomerService struct {
	pool *database.Pool
	log  zerolog.Logger
}

// NewCustomerService creates a customer service
func NewCustomerService(pool *database.Pool, log zerolog.Logger) *CustomerService {
	return &CustomerService{pool: pool, log: log.With().Str("service", "customers").Logger()}
}

// List returns customers whose name or phone contains search
func (s *CustomerService) List(ctx context.Context, search string) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		q := db.Model(&models.Customer{})
		if search = strings.TrimSpace(search); search != "" {
			like := likePattern(search)
			q = q.Where("LOWER(full_name) LIKE ?"+likeEscape+" OR LOWER(phone) LIKE ?"+likeEscape, like, like)
		}
		return q.Order("full_name").Order("id").Find(&customers).Error
	})
	if err != nil {
		return nil, classify("list customers", err)
	}
	return customers, nil
}

// Get loads one customer
func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		err := db.First(&c, id).Error
		if isRecordNotFound(err) {
			return notFound("customer", id)
		}
		return err
	})
	if err != nil {
		return nil, classify("get customer", err)
	}
	return &c, nil
}

// Create stores a new customer
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c := models.Customer{
		FullName: in.FullName,
		Code:     in.Code,
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		Gender:   in.Gender,
	}
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		return db.Create(&c).Error
	})
	if err != nil {
		return nil, classify("create customer", err)
	}
	s.log.Info().Uint("id", c.ID).Msg("customer created")
	return &c, nil
}

// Update replaces a customer's fields
func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) error {
	if err := in.normalize(); err != nil {
		return err
	}
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("customer", id)
			}
			return err
		}
		return tx.Model(&c).Updates(map[string]interface{}{
			"full_name": in.FullName,
			"code":      in.Code,
			"phone":     in.Phone,
			"email":     in.Email,
			"address":   in.Address,
			"gender":    in.Gender,
		}).Error
	})
	return classify("update customer", err)
}

// Delete removes a customer without orders
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("customer", id)
			}
			return err
		}
		var refs int64
		if err := tx.Model(&models.Order{}).Where("customer_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return referenced("customer %q has %d orders", c.FullName, refs)
		}
		return tx.Delete(&models.Customer{}, id).Error
	})
	if err != nil {
		return classify("delete customer", err)
	}
	s.log.Info().Uint("id", id).Msg("customer deleted")
	return nil
}
