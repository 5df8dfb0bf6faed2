package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/skincareshop/database"
	"github.com/skincareshop/models"
	"gorm.io/gorm"
)

// ProductInput holds the editable product fields. An empty ImageURL on
// update keeps the current image.
type ProductInput struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Qty      int             `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	ImageURL string          `json:"image_url"`
}

// ParseProductInput builds a ProductInput from raw form values
func ParseProductInput(code, name, qty, price, category string) (ProductInput, error) {
	in := ProductInput{
		Code:     strings.TrimSpace(code),
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
	}
	if q := strings.TrimSpace(qty); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return in, invalidf("quantity %q is not a whole number", qty)
		}
		in.Qty = n
	}
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return in, invalidf("price %q is not a number", price)
	}
	in.Price = p
	return in, in.validate()
}

func (in ProductInput) validate() error {
	switch {
	case in.Code == "":
		return invalidf("product code is required")
	case in.Name == "":
		return invalidf("product name is required")
	case in.Qty < 0:
		return invalidf("quantity cannot be negative")
	case in.Price.IsNegative():
		return invalidf("price cannot be negative")
	}
	return nil
}

// ProductService manages the catalogue
type ProductService struct {
	pool *database.Pool
	log  zerolog.Logger
}

// NewProductService creates a product service
func NewProductService(pool *database.Pool, log zerolog.Logger) *ProductService {
	return &ProductService{pool: pool, log: log.With().Str("service", "products").Logger()}
}

// List returns products whose name contains search, ordered by name
func (s *ProductService) List(ctx context.Context, search string) ([]models.Product, error) {
	var products []models.Product
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		q := db.Model(&models.Product{})
		if search = strings.TrimSpace(search); search != "" {
			q = q.Where("LOWER(name) LIKE ?"+likeEscape, likePattern(search))
		}
		return q.Order("name").Order("id").Find(&products).Error
	})
	if err != nil {
		return nil, classify("list products", err)
	}
	return products, nil
}

// Get loads one product
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		err := db.First(&p, id).Error
		if isRecordNotFound(err) {
			return notFound("product", id)
		}
		return err
	})
	if err != nil {
		return nil, classify("get product", err)
	}
	return &p, nil
}

// Create stores a new product
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := models.Product{
		Code:     in.Code,
		Name:     in.Name,
		Qty:      in.Qty,
		Price:    in.Price,
		Category: in.Category,
		ImageURL: in.ImageURL,
	}
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		return db.Create(&p).Error
	})
	if err != nil {
		return nil, classify("create product", err)
	}
	s.log.Info().Uint("id", p.ID).Str("code", p.Code).Msg("product created")
	return &p, nil
}

// Update changes a product and returns the image it replaced, if any.
// Existing order items keep the price they were written with.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (replacedImage string, err error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	err = s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("product", id)
			}
			return err
		}
		updates := map[string]interface{}{
			"code":     in.Code,
			"name":     in.Name,
			"qty":      in.Qty,
			"price":    in.Price,
			"category": in.Category,
		}
		if in.ImageURL != "" && in.ImageURL != p.ImageURL {
			updates["image_url"] = in.ImageURL
			replacedImage = p.ImageURL
		}
		return tx.Model(&p).Updates(updates).Error
	})
	if err != nil {
		return "", classify("update product", err)
	}
	s.log.Info().Uint("id", id).Msg("product updated")
	return replacedImage, nil
}

// Delete removes a product nobody ordered yet and returns it
func (s *ProductService) Delete(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("product", id)
			}
			return err
		}
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return referenced("product %q is part of %d order items", p.Name, refs)
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return nil, classify("delete product", err)
	}
	s.log.Info().Uint("id", id).Str("code", p.Code).Msg("product deleted")
	return &p, nil
}
