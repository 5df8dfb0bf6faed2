package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skincareshop/config"
	"github.com/skincareshop/models"
)

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := newTestDB(t)
	for _, model := range models.AllModels() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
	assert.True(t, db.Migrator().HasConstraint(&models.Order{}, "Customer"))
	assert.True(t, db.Migrator().HasConstraint(&models.OrderItem{}, "Product"))

	// running twice is a no-op
	assert.NoError(t, AutoMigrate(db, zerolog.Nop()))
}

func TestUpgradeLegacySchema(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Source: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := Open(cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	defer Close(db)

	legacy := []string{
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, code TEXT, customer_id INTEGER, order_date DATETIME, total_amount DECIMAL(10,2))`,
		`CREATE TABLE order_items (id INTEGER PRIMARY KEY, order_id INTEGER, product_id INTEGER, quantity INTEGER, price DECIMAL(10,2))`,
		`INSERT INTO orders (id, code, customer_id, total_amount) VALUES (1, 'ORD-0000000A', 3, NULL), (2, 'ORD-0000000B', 3, 5)`,
		`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (1, 10, 2, 9.50), (1, 11, 1, 20.00)`,
	}
	for _, stmt := range legacy {
		require.NoError(t, db.Exec(stmt).Error)
	}

	require.NoError(t, UpgradeLegacySchema(db, zerolog.Nop()))
	// idempotent
	require.NoError(t, UpgradeLegacySchema(db, zerolog.Nop()))

	assert.False(t, db.Migrator().HasColumn(&models.Order{}, "total_amount"))
	assert.True(t, db.Migrator().HasColumn(&models.OrderItem{}, "subtotal"))

	var items []struct{ Subtotal decimal.Decimal }
	require.NoError(t, db.Raw("SELECT subtotal FROM order_items ORDER BY id").Scan(&items).Error)
	require.Len(t, items, 2)
	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("19.00")), items[0].Subtotal.String())
	assert.True(t, items[1].Subtotal.Equal(decimal.RequireFromString("20.00")), items[1].Subtotal.String())

	var orders []struct{ Total decimal.Decimal }
	require.NoError(t, db.Raw("SELECT total FROM orders ORDER BY id").Scan(&orders).Error)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("39.00")), orders[0].Total.String())
	assert.True(t, orders[1].Total.IsZero(), "order without items totals zero")
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	admin := models.User{Username: "admin", PasswordHash: "hash"}

	require.NoError(t, SeedData(db, admin, zerolog.Nop()))
	require.NoError(t, SeedData(db, admin, zerolog.Nop()))

	var users, products int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Product{}).Count(&products)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 5, products)

	require.NoError(t, ClearData(db))
	db.Model(&models.Product{}).Count(&products)
	assert.Zero(t, products)
}
