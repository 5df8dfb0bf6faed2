package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/skincareshop/database"
	"github.com/skincareshop/models"
)

// dbSuite gives every test a migrated in-memory database and a pool
type dbSuite struct {
	suite.Suite
	db   *gorm.DB
	pool *database.Pool
	ctx  context.Context
}

func (s *dbSuite) SetupSuite() {
	db, err := database.OpenInMemory(zerolog.Nop(), nil)
	require.NoError(s.T(), err)
	s.db = db
	s.pool = database.NewPool(db, database.DefaultPoolSize, database.DefaultRetryDelay)
	s.ctx = context.Background()
}

func (s *dbSuite) SetupTest() {
	require.NoError(s.T(), database.ClearData(s.db))
}

func (s *dbSuite) TearDownSuite() {
	_ = s.pool.Close()
}

func (s *dbSuite) addCustomer(id uint, name string) models.Customer {
	c := models.Customer{ID: id, FullName: name}
	require.NoError(s.T(), s.db.Create(&c).Error)
	return c
}

func (s *dbSuite) addProduct(id uint, name, price string) models.Product {
	p := models.Product{ID: id, Code: name[:3], Name: name, Qty: 10, Price: decimal.RequireFromString(price)}
	require.NoError(s.T(), s.db.Create(&p).Error)
	return p
}

func (s *dbSuite) countItems(orderID uint) int64 {
	var n int64
	require.NoError(s.T(), s.db.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&n).Error)
	return n
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// sequence returns a clock that advances one hour per call from start
func sequence(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Hour)
		return t
	}
}
