package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/skincareshop/web/handlers"
	"github.com/skincareshop/web/middleware"
)

//go:embed templates
var templatesFS embed.FS

// Server represents the web server
type Server struct {
	app *fiber.App
	log zerolog.Logger
}

// NewEngine builds the template engine with the view helpers
func NewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")

	engine.AddFunc("formatDate", func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	})
	engine.AddFunc("formatDateYMD", func(t time.Time) string {
		return t.Format("2006-01-02")
	})
	engine.AddFunc("money", func(d decimal.Decimal) string {
		return "$" + d.StringFixed(2)
	})
	engine.AddFunc("formatDuration", func(d time.Duration) string {
		if d < time.Millisecond {
			return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000)
		}
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000)
	})
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	return engine, nil
}

// NewServer creates the Fiber app with every route wired to h
func NewServer(h *handlers.Handler, staticDir string) (*Server, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	log := h.Log

	app := fiber.New(fiber.Config{
		Views:                 engine,
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := handlers.StatusFor(err)
			if code >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request error")
			}

			if middleware.IsAPI(c) {
				return c.Status(code).JSON(fiber.Map{
					"success": false,
					"message": handlers.Message(err),
				})
			}

			return c.Status(code).Render("pages/error", fiber.Map{
				"Title": "Error",
				"Error": handlers.Message(err),
				"Code":  code,
				"User":  middleware.CurrentUser(c),
			}, "layouts/base")
		},
	})

	// Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(cors.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(h.Sessions.Load())
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.SQLDebugMiddleware(h.Queries))

	// Method override middleware for HTML forms
	app.Use(func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost {
			if method := c.FormValue("_method"); method != "" {
				c.Method(method)
			}
		}
		return c.Next()
	})

	if staticDir != "" {
		app.Static("/static", staticDir)
	}

	setupRoutes(app, h)

	return &Server{app: app, log: log}, nil
}

// App exposes the Fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the server
func (s *Server) Start(port string) error {
	s.log.Info().Str("addr", "http://localhost:"+port).Msg("server starting")
	return s.app.Listen(":" + port)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, h *handlers.Handler) {
	auth := middleware.RequireLogin()

	app.Get("/login", h.LoginPage)
	app.Post("/login", h.Login)
	app.Get("/register", h.RegisterPage)
	app.Post("/register", h.Register)
	app.Get("/logout", h.Logout)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/products")
	})

	// Product management
	products := app.Group("/products", auth)
	products.Get("/", h.ProductList)
	products.Post("/", h.ProductCreate)
	products.Get("/:id/edit", h.ProductEdit)
	products.Put("/:id", h.ProductUpdate)
	products.Delete("/:id", h.ProductDelete)

	// Customer management
	customers := app.Group("/customers", auth)
	customers.Get("/", h.CustomerList)
	customers.Get("/search", h.CustomerSearch)
	customers.Post("/", h.CustomerCreate)
	customers.Get("/:id/edit", h.CustomerEdit)
	customers.Put("/:id", h.CustomerUpdate)
	customers.Delete("/:id", h.CustomerDelete)

	// Staff management
	staff := app.Group("/staff", auth)
	staff.Get("/", h.StaffList)
	staff.Get("/search", h.StaffSearch)
	staff.Post("/", h.StaffCreate)
	staff.Get("/:id/edit", h.StaffEdit)
	staff.Put("/:id", h.StaffUpdate)
	staff.Delete("/:id", h.StaffDelete)

	// Orders: specific routes before ":id"
	orders := app.Group("/orders", auth)
	orders.Get("/", h.OrderList)
	orders.Get("/search", h.OrderSearch)
	orders.Get("/export", h.OrderExport)
	orders.Post("/", h.OrderCreate)
	orders.Get("/:id/edit", h.OrderEdit)
	orders.Put("/:id", h.OrderUpdate)
	orders.Delete("/:id", h.OrderDelete)

	// JSON API
	api := app.Group("/api")
	api.Get("/products", h.APIProducts)
	api.Post("/products", auth, h.APICreateProduct)
	api.Delete("/products/:id", auth, h.APIDeleteProduct)
	api.Get("/customers", auth, h.APICustomers)
	api.Get("/orders", auth, h.APIOrders)
	api.Post("/orders", auth, h.APICreateOrder)
	api.Put("/orders/:id", auth, h.APIUpdateOrder)
	api.Delete("/orders/:id", auth, h.APIDeleteOrder)

	// Debug endpoint for SQL logs
	api.Get("/debug/sql", auth, h.GetSQLLogs)
	api.Delete("/debug/sql", auth, h.ClearSQLLogs)
}
