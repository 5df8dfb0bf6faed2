package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/web/middleware"
)

// LoginPage shows the login form
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	if middleware.CurrentUser(c) != nil {
		return c.Redirect("/products")
	}
	return h.render(c, "login", fiber.Map{"Title": "Login"})
}

// Login checks credentials and starts a session
func (h *Handler) Login(c *fiber.Ctx) error {
	user, err := h.Auth.Authenticate(c.UserContext(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		h.logFailure(c, err)
		middleware.SetFlash(c, "danger", "Invalid credentials. Please try again.")
		return c.Redirect("/login")
	}
	if err := h.Sessions.Login(c, user); err != nil {
		return err
	}
	return done(c, "You were successfully logged in.", "/products")
}

// Logout ends the session
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.Sessions.Logout(c)
	return done(c, "You were logged out.", "/login")
}

// RegisterPage shows the sign-up form
func (h *Handler) RegisterPage(c *fiber.Ctx) error {
	return h.render(c, "register", fiber.Map{"Title": "Register"})
}

// Register creates an account
func (h *Handler) Register(c *fiber.Ctx) error {
	_, err := h.Auth.Register(c.UserContext(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return h.fail(c, err, "/register")
	}
	return done(c, "Registration successful! Please log in.", "/login")
}
