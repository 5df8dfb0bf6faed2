package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/skincareshop/models"
	"gorm.io/gorm"
)

// foreignKeys lists relationship fields whose constraints must exist
var foreignKeys = []struct {
	model interface{}
	field string
}{
	{&models.Order{}, "Customer"},
	{&models.Order{}, "Items"},
	{&models.OrderItem{}, "Product"},
}

// AutoMigrate creates or updates every table, parents first, then makes
// sure the order foreign keys exist.
func AutoMigrate(db *gorm.DB, log zerolog.Logger) error {
	log.Info().Msg("starting migration")

	migrator := db.Migrator()
	for _, model := range models.AllModels() {
		stmt := &gorm.Statement{DB: db}
		table := fmt.Sprintf("%T", model)
		if err := stmt.Parse(model); err == nil {
			table = stmt.Schema.Table
		}

		if err := migrator.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
		log.Info().Str("table", table).Msg("✓ table ready")
	}

	for _, fk := range foreignKeys {
		if migrator.HasConstraint(fk.model, fk.field) {
			continue
		}
		if err := migrator.CreateConstraint(fk.model, fk.field); err != nil {
			log.Warn().Err(err).Str("field", fk.field).Msg("⚠ could not create foreign key")
			continue
		}
		log.Info().Str("field", fk.field).Msg("✓ created foreign key")
	}

	log.Info().Msg("migration completed")
	return nil
}

// UpgradeLegacySchema brings databases created by older releases up to
// date: orders.total_amount becomes orders.total, order_items gains a
// subtotal column, and every subtotal and total is recomputed from the
// stored prices. Safe to run repeatedly.
func UpgradeLegacySchema(db *gorm.DB, log zerolog.Logger) error {
	migrator := db.Migrator()

	if migrator.HasColumn(&models.Order{}, "total_amount") && !migrator.HasColumn(&models.Order{}, "total") {
		if err := migrator.RenameColumn(&models.Order{}, "total_amount", "total"); err != nil {
			return fmt.Errorf("rename orders.total_amount: %w", err)
		}
		log.Info().Msg("✓ renamed orders.total_amount to total")
	}
	if !migrator.HasColumn(&models.Order{}, "total") {
		if err := migrator.AddColumn(&models.Order{}, "Total"); err != nil {
			return fmt.Errorf("add orders.total: %w", err)
		}
		log.Info().Msg("✓ added orders.total")
	}
	if !migrator.HasColumn(&models.OrderItem{}, "subtotal") {
		if err := migrator.AddColumn(&models.OrderItem{}, "Subtotal"); err != nil {
			return fmt.Errorf("add order_items.subtotal: %w", err)
		}
		log.Info().Msg("✓ added order_items.subtotal")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			sql  string
		}{
			{"null totals", "UPDATE orders SET total = 0 WHERE total IS NULL"},
			{"subtotals", "UPDATE order_items SET subtotal = price * quantity WHERE subtotal IS NULL OR subtotal = 0"},
			{"totals", "UPDATE orders SET total = COALESCE((SELECT SUM(oi.subtotal) FROM order_items oi WHERE oi.order_id = orders.id), 0)"},
		}
		for _, step := range steps {
			res := tx.Exec(step.sql)
			if res.Error != nil {
				return fmt.Errorf("backfill %s: %w", step.name, res.Error)
			}
			log.Info().Str("step", step.name).Int64("rows", res.RowsAffected).Msg("✓ backfilled")
		}
		return nil
	})
}

// DropAll drops every application table, children first
func DropAll(db *gorm.DB) error {
	all := models.AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

// CheckConnection verifies the database answers
func CheckConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
