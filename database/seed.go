package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/skincareshop/models"
	"gorm.io/gorm"
)

// SeedData creates the admin account and a starter catalogue. Tables that
// already hold rows are left alone.
func SeedData(db *gorm.DB, admin models.User, log zerolog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&admin).Error; err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			log.Info().Str("username", admin.Username).Msg("✓ seeded admin user")
		}

		if err := tx.Model(&models.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			products := []models.Product{
				{Code: "CLN-001", Name: "Gentle Foaming Cleanser", Qty: 40, Price: decimal.RequireFromString("12.50"), Category: "Cleanser"},
				{Code: "TNR-001", Name: "Hydrating Toner", Qty: 25, Price: decimal.RequireFromString("15.00"), Category: "Toner"},
				{Code: "SRM-001", Name: "Vitamin C Serum", Qty: 18, Price: decimal.RequireFromString("29.90"), Category: "Serum"},
				{Code: "MST-001", Name: "Barrier Repair Moisturizer", Qty: 30, Price: decimal.RequireFromString("22.00"), Category: "Moisturizer"},
				{Code: "SPF-001", Name: "Mineral Sunscreen SPF 50", Qty: 50, Price: decimal.RequireFromString("19.00"), Category: "Sunscreen"},
			}
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
			log.Info().Int("count", len(products)).Msg("✓ seeded products")
		}

		if err := tx.Model(&models.Customer{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			customers := []models.Customer{
				{FullName: "Sophea Chan", Code: "CUS-001", Phone: "012345678", Email: "sophea@example.com", Gender: "Female"},
				{FullName: "Dara Kim", Code: "CUS-002", Phone: "098765432", Email: "dara@example.com", Gender: "Male"},
			}
			if err := tx.Create(&customers).Error; err != nil {
				return fmt.Errorf("seed customers: %w", err)
			}
			log.Info().Int("count", len(customers)).Msg("✓ seeded customers")
		}
		return nil
	})
}

// ClearData removes all rows, children first
func ClearData(db *gorm.DB) error {
	all := models.AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	return nil
}
