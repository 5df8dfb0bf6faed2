package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/skincareshop/database"
	"github.com/skincareshop/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LineItemInput is one requested product and quantity
type LineItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderInput is the full content of an order as submitted
type OrderInput struct {
	CustomerID uint            `json:"customer_id"`
	Items      []LineItemInput `json:"items"`
}

func (in OrderInput) validate() error {
	if in.CustomerID == 0 {
		return invalidf("customer is required")
	}
	if len(in.Items) == 0 {
		return invalidf("an order needs at least one item")
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			return invalidf("item %d: product is required", i+1)
		}
		if item.Quantity <= 0 {
			return invalidf("item %d: quantity must be a positive integer", i+1)
		}
	}
	return nil
}

// ParseLineItems pairs the parallel product id and quantity form arrays.
func ParseLineItems(productIDs, quantities []string) ([]LineItemInput, error) {
	if len(productIDs) != len(quantities) {
		return nil, invalidf("got %d products but %d quantities", len(productIDs), len(quantities))
	}
	items := make([]LineItemInput, 0, len(productIDs))
	for i := range productIDs {
		id, err := strconv.ParseUint(strings.TrimSpace(productIDs[i]), 10, 64)
		if err != nil || id == 0 {
			return nil, invalidf("item %d: product id %q is not valid", i+1, productIDs[i])
		}
		qty, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
		if err != nil || qty <= 0 {
			return nil, invalidf("item %d: quantity %q must be a positive integer", i+1, quantities[i])
		}
		items = append(items, LineItemInput{ProductID: uint(id), Quantity: qty})
	}
	if len(items) == 0 {
		return nil, invalidf("an order needs at least one item")
	}
	return items, nil
}

// OrderSummary is one row of the order listing
type OrderSummary struct {
	ID           uint            `json:"id"`
	Code         string          `json:"code"`
	OrderDate    time.Time       `json:"order_date"`
	CustomerID   uint            `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	ItemsSummary string          `json:"items"`
}

// Lookups are the read-only lists the order pages need for their forms
type Lookups struct {
	Customers []models.Customer
	Products  []models.Product
}

// OrderService owns the order workflow. Every write runs in one
// transaction: the order header, its items and its total change together
// or not at all.
type OrderService struct {
	pool    *database.Pool
	log     zerolog.Logger
	now     func() time.Time
	newCode CodeGenerator
}

// OrderOption customises an OrderService
type OrderOption func(*OrderService)

// WithClock replaces time.Now for order dates
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// WithCodeGenerator replaces the random order code body
func WithCodeGenerator(gen CodeGenerator) OrderOption {
	return func(s *OrderService) { s.newCode = gen }
}

// NewOrderService creates the order workflow on top of pool
func NewOrderService(pool *database.Pool, log zerolog.Logger, opts ...OrderOption) *OrderService {
	s := &OrderService{
		pool:    pool,
		log:     log.With().Str("service", "orders").Logger(),
		now:     time.Now,
		newCode: RandomHex,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// priceItems snapshots current product prices into item rows and returns
// them with their total
func priceItems(tx *gorm.DB, inputs []LineItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, decimal.Zero, err
	}
	prices := make(map[uint]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		price, ok := prices[in.ProductID]
		if !ok {
			return nil, decimal.Zero, notFound("product", in.ProductID)
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		total = total.Add(subtotal)
		items = append(items, models.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     price,
			Subtotal:  subtotal,
		})
	}
	return items, total, nil
}

func requireCustomer(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Customer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("customer", id)
	}
	return nil
}

func insertItems(tx *gorm.DB, orderID uint, items []models.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

// Create prices the items, assigns a fresh code and stores the order
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		if err := requireCustomer(tx, in.CustomerID); err != nil {
			return err
		}
		items, total, err := priceItems(tx, in.Items)
		if err != nil {
			return err
		}
		code, err := uniqueCode(tx, s.newCode, OrderCodePrefix, &models.Order{})
		if err != nil {
			return err
		}

		order = models.Order{
			Code:       code,
			CustomerID: in.CustomerID,
			OrderDate:  s.now(),
			Total:      total,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		if err := insertItems(tx, order.ID, items); err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, classify("create order", err)
	}

	s.log.Info().Str("code", order.Code).Uint("customer_id", order.CustomerID).
		Str("total", order.Total.StringFixed(2)).Int("items", len(order.Items)).Msg("order created")
	return &order, nil
}

// Update replaces the customer and the whole item set of an order. Items
// left out of in are removed. The header row is locked for the duration,
// so concurrent edits of one order apply one after the other and the last
// commit wins.
func (s *OrderService) Update(ctx context.Context, id uint, in OrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("order", id)
			}
			return err
		}
		if err := requireCustomer(tx, in.CustomerID); err != nil {
			return err
		}
		items, total, err := priceItems(tx, in.Items)
		if err != nil {
			return err
		}

		err = tx.Model(&order).Omit(clause.Associations).Updates(map[string]interface{}{
			"customer_id": in.CustomerID,
			"total":       total,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := insertItems(tx, id, items); err != nil {
			return err
		}

		order.CustomerID = in.CustomerID
		order.Total = total
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, classify("update order", err)
	}

	s.log.Info().Str("code", order.Code).Str("total", order.Total.StringFixed(2)).
		Int("items", len(order.Items)).Msg("order updated")
	return &order, nil
}

// Delete removes an order's items and then the order
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	var order models.Order
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("order", id)
			}
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return classify("delete order", err)
	}

	s.log.Info().Str("code", order.Code).Msg("order deleted")
	return nil
}

// Get loads an order with its customer and items
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		err := db.Preload("Customer").
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
			Preload("Items.Product").
			First(&order, id).Error
		if isRecordNotFound(err) {
			return notFound("order", id)
		}
		return err
	})
	if err != nil {
		return nil, classify("get order", err)
	}
	return &order, nil
}

// List returns the orders matching filter, newest first, each with its
// "name (qty)" item summary
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]OrderSummary, error) {
	return s.list(ctx, filter.Predicates(), true)
}

// QuickSearch matches term against order code and customer name only
func (s *OrderService) QuickSearch(ctx context.Context, term string) ([]OrderSummary, error) {
	var preds []Predicate
	if term = strings.TrimSpace(term); term != "" {
		preds = append(preds, CodeOrCustomerMatches(term))
	}
	return s.list(ctx, preds, true)
}

func (s *OrderService) list(ctx context.Context, preds []Predicate, withItems bool) ([]OrderSummary, error) {
	var orders []OrderSummary
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		q := db.Table("orders o").
			Select("o.id, o.code, o.order_date, o.customer_id, COALESCE(c.full_name, '') AS customer_name, o.total").
			Joins("LEFT JOIN customers c ON c.id = o.customer_id")
		q = ApplyPredicates(q, preds)
		if err := q.Order("o.order_date DESC").Order("o.id DESC").Scan(&orders).Error; err != nil {
			return err
		}
		if !withItems || len(orders) == 0 {
			return nil
		}
		return attachItemSummaries(db, orders)
	})
	if err != nil {
		return nil, classify("list orders", err)
	}
	return orders, nil
}

func attachItemSummaries(db *gorm.DB, orders []OrderSummary) error {
	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	var rows []struct {
		OrderID  uint
		Name     string
		Quantity int
	}
	err := db.Table("order_items oi").
		Select("oi.order_id, p.name, oi.quantity").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id IN ?", ids).
		Order("oi.order_id").Order("oi.id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	parts := make(map[uint][]string, len(orders))
	for _, r := range rows {
		parts[r.OrderID] = append(parts[r.OrderID], fmt.Sprintf("%s (%d)", r.Name, r.Quantity))
	}
	for i := range orders {
		orders[i].ItemsSummary = strings.Join(parts[orders[i].ID], ", ")
	}
	return nil
}

// Lookups returns every customer by name and the product catalogue by name
func (s *OrderService) Lookups(ctx context.Context) (*Lookups, error) {
	var l Lookups
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		if err := db.Order("full_name").Find(&l.Customers).Error; err != nil {
			return err
		}
		return db.Order("name").Find(&l.Products).Error
	})
	if err != nil {
		return nil, classify("order lookups", err)
	}
	return &l, nil
}

// ExportHeader is the first CSV row
var ExportHeader = []string{"Order Code", "Order Date", "Customer Name", "Total"}

// Export writes every order as CSV, newest first
func (s *OrderService) Export(ctx context.Context, w io.Writer) error {
	orders, err := s.list(ctx, nil, false)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, o := range orders {
		name := o.CustomerName
		if name == "" {
			name = "Unknown"
		}
		record := []string{
			o.Code,
			o.OrderDate.Format("2006-01-02 15:04:05"),
			name,
			"$" + o.Total.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
