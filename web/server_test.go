package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/skincareshop/database"
	"github.com/skincareshop/models"
	"github.com/skincareshop/services"
	"github.com/skincareshop/web/handlers"
	"github.com/skincareshop/web/middleware"
)

type ServerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	pool    *database.Pool
	server  *Server
	handler *handlers.Handler
	cookie  string
}

func (s *ServerTestSuite) SetupSuite() {
	queries := database.NewQueryLogger(200)
	db, err := database.OpenInMemory(zerolog.Nop(), queries)
	s.Require().NoError(err)
	s.db = db
	s.pool = database.NewPool(db, database.DefaultPoolSize, database.DefaultRetryDelay)

	uploads, err := handlers.NewUploads(s.T().TempDir())
	s.Require().NoError(err)

	log := zerolog.Nop()
	s.handler = &handlers.Handler{
		Orders:    services.NewOrderService(s.pool, log),
		Products:  services.NewProductService(s.pool, log),
		Customers: services.NewCustomerService(s.pool, log),
		Staff:     services.NewStaffService(s.pool, log, services.RandomHex),
		Auth:      services.NewAuthService(s.pool, log),
		Sessions:  middleware.NewSessionManager("test-secret", time.Hour),
		Queries:   queries,
		Uploads:   uploads,
		Log:       log,
	}
	s.server, err = NewServer(s.handler, "")
	s.Require().NoError(err)
}

func (s *ServerTestSuite) TearDownSuite() {
	_ = s.pool.Close()
}

func (s *ServerTestSuite) SetupTest() {
	s.Require().NoError(database.ClearData(s.db))

	user, err := s.handler.Auth.Register(context.Background(), "admin", "secret")
	s.Require().NoError(err)
	token, _, err := s.handler.Sessions.Token(user)
	s.Require().NoError(err)
	s.cookie = middleware.SessionCookie + "=" + token

	s.Require().NoError(s.db.Create(&models.Customer{ID: 1, FullName: "Alice Nguyen"}).Error)
	s.Require().NoError(s.db.Create(&models.Product{ID: 1, Code: "SER", Name: "Serum", Qty: 5, Price: decimal.RequireFromString("12.50")}).Error)
	s.Require().NoError(s.db.Create(&models.Product{ID: 2, Code: "TON", Name: "Toner", Qty: 5, Price: decimal.RequireFromString("7.00")}).Error)
}

func (s *ServerTestSuite) do(req *http.Request, authed bool) *http.Response {
	if authed {
		req.Header.Set("Cookie", s.cookie)
	}
	resp, err := s.server.App().Test(req, -1)
	s.Require().NoError(err)
	return resp
}

func (s *ServerTestSuite) form(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (s *ServerTestSuite) jsonRequest(method, target string, body interface{}) *http.Request {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *ServerTestSuite) TestAnonymousPageRedirectsToLogin() {
	resp := s.do(httptest.NewRequest(http.MethodGet, "/orders", nil), false)
	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/login", resp.Header.Get("Location"))
}

func (s *ServerTestSuite) TestAnonymousAPIGets401() {
	resp := s.do(httptest.NewRequest(http.MethodGet, "/api/orders", nil), false)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(false, decodeBody(s.T(), resp)["success"])
}

func (s *ServerTestSuite) TestPublicProductAPI() {
	resp := s.do(httptest.NewRequest(http.MethodGet, "/api/products?search=ser", nil), false)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	products := decodeBody(s.T(), resp)["products"].([]interface{})
	s.Len(products, 1)
}

func (s *ServerTestSuite) TestLoginSetsSessionCookie() {
	resp := s.do(s.form(http.MethodPost, "/login", url.Values{
		"username": {"admin"},
		"password": {"secret"},
	}), false)
	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/products", resp.Header.Get("Location"))

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			found = true
		}
	}
	s.True(found, "session cookie not set")
}

func (s *ServerTestSuite) TestLoginWithWrongPasswordStaysOnLogin() {
	resp := s.do(s.form(http.MethodPost, "/login", url.Values{
		"username": {"admin"},
		"password": {"nope"},
	}), false)
	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/login", resp.Header.Get("Location"))
}

func (s *ServerTestSuite) TestPagesRender() {
	for _, path := range []string{"/products", "/customers", "/staff", "/orders", "/customers/search?query=ali"} {
		resp := s.do(httptest.NewRequest(http.MethodGet, path, nil), true)
		s.Equal(http.StatusOK, resp.StatusCode, path)
	}
	resp := s.do(httptest.NewRequest(http.MethodGet, "/login", nil), false)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerTestSuite) TestAPIOrderLifecycle() {
	resp := s.do(s.jsonRequest(http.MethodPost, "/api/orders", services.OrderInput{
		CustomerID: 1,
		Items: []services.LineItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 2},
		},
	}), true)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	order := decodeBody(s.T(), resp)["order"].(map[string]interface{})
	s.True(strings.HasPrefix(order["code"].(string), "ORD-"))

	var stored models.Order
	s.Require().NoError(s.db.First(&stored).Error)
	s.True(decimal.RequireFromString("39.00").Equal(stored.Total))

	resp = s.do(httptest.NewRequest(http.MethodGet, "/api/orders?customer_id=1", nil), true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	orders := decodeBody(s.T(), resp)["orders"].([]interface{})
	s.Require().Len(orders, 1)
	s.Contains(orders[0].(map[string]interface{})["items"], "Serum (2)")

	resp = s.do(s.jsonRequest(http.MethodPut, "/api/orders/"+itoa(stored.ID), services.OrderInput{
		CustomerID: 1,
		Items:      []services.LineItemInput{{ProductID: 2, Quantity: 1}},
	}), true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(s.db.First(&stored, stored.ID).Error)
	s.True(decimal.RequireFromString("7.00").Equal(stored.Total))

	resp = s.do(httptest.NewRequest(http.MethodDelete, "/api/orders/"+itoa(stored.ID), nil), true)
	s.Equal(http.StatusOK, resp.StatusCode)
	var n int64
	s.db.Model(&models.OrderItem{}).Count(&n)
	s.Zero(n)
}

func (s *ServerTestSuite) TestAPIRejectsInvalidOrder() {
	resp := s.do(s.jsonRequest(http.MethodPost, "/api/orders", services.OrderInput{CustomerID: 1}), true)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(s.jsonRequest(http.MethodPost, "/api/orders", services.OrderInput{
		CustomerID: 99,
		Items:      []services.LineItemInput{{ProductID: 1, Quantity: 1}},
	}), true)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerTestSuite) TestFormOrderCreate() {
	resp := s.do(s.form(http.MethodPost, "/orders", url.Values{
		"customer_id":   {"1"},
		"product_ids[]": {"1", "2"},
		"quantities[]":  {"1", "3"},
	}), true)
	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/orders", resp.Header.Get("Location"))

	var stored models.Order
	s.Require().NoError(s.db.Preload("Items").First(&stored).Error)
	s.Len(stored.Items, 2)
	s.True(decimal.RequireFromString("33.50").Equal(stored.Total))
}

func (s *ServerTestSuite) TestFormOrderEditUsesMethodOverride() {
	order, err := s.handler.Orders.Create(context.Background(), services.OrderInput{
		CustomerID: 1,
		Items:      []services.LineItemInput{{ProductID: 1, Quantity: 1}},
	})
	s.Require().NoError(err)

	resp := s.do(httptest.NewRequest(http.MethodGet, "/orders/"+itoa(order.ID)+"/edit", nil), true)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(s.form(http.MethodPost, "/orders/"+itoa(order.ID), url.Values{
		"_method":       {"PUT"},
		"customer_id":   {"1"},
		"product_ids[]": {"2"},
		"quantities[]":  {"4"},
	}), true)
	s.Equal(http.StatusFound, resp.StatusCode)

	var stored models.Order
	s.Require().NoError(s.db.First(&stored, order.ID).Error)
	s.True(decimal.RequireFromString("28.00").Equal(stored.Total))
}

func (s *ServerTestSuite) TestExportCSV() {
	_, err := s.handler.Orders.Create(context.Background(), services.OrderInput{
		CustomerID: 1,
		Items:      []services.LineItemInput{{ProductID: 1, Quantity: 2}},
	})
	s.Require().NoError(err)

	resp := s.do(httptest.NewRequest(http.MethodGet, "/orders/export", nil), true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Disposition"), "orders_export_")

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	s.Require().Len(lines, 2)
	s.Equal("Order Code,Order Date,Customer Name,Total", strings.TrimSpace(lines[0]))
	s.Contains(lines[1], "Alice Nguyen")
	s.Contains(lines[1], "$25.00")
}

func (s *ServerTestSuite) TestDeleteReferencedProductConflicts() {
	_, err := s.handler.Orders.Create(context.Background(), services.OrderInput{
		CustomerID: 1,
		Items:      []services.LineItemInput{{ProductID: 1, Quantity: 1}},
	})
	s.Require().NoError(err)

	resp := s.do(httptest.NewRequest(http.MethodDelete, "/api/products/1", nil), true)
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp = s.do(httptest.NewRequest(http.MethodDelete, "/api/products/2", nil), true)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerTestSuite) TestSQLDebugHeader() {
	resp := s.do(httptest.NewRequest(http.MethodGet, "/api/products", nil), false)
	s.NotEqual("0", resp.Header.Get("X-SQL-Queries"))
	s.NotEmpty(resp.Header.Get("X-Request-Id"))
}

func (s *ServerTestSuite) TestSQLLogsNegativeLimit() {
	resp := s.do(httptest.NewRequest(http.MethodGet, "/api/debug/sql?limit=-1", nil), true)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := decodeBody(s.T(), resp)
	s.EqualValues(0, body["total"])
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestEngineRendersErrorPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	require.NoError(t, engine.Load())

	var out bytes.Buffer
	err = engine.Render(&out, "pages/error", map[string]interface{}{"Code": 404, "Error": "No such order"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No such order")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
