package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/services"
)

func customerInput(c *fiber.Ctx) services.CustomerInput {
	return services.CustomerInput{
		FullName: c.FormValue("full_name"),
		Code:     c.FormValue("code"),
		Phone:    c.FormValue("phone"),
		Email:    c.FormValue("email"),
		Address:  c.FormValue("address"),
		Gender:   c.FormValue("gender"),
	}
}

func (h *Handler) customerPage(c *fiber.Ctx, search string) error {
	customers, err := h.Customers.List(c.UserContext(), search)
	if err != nil {
		return err
	}
	return h.render(c, "customers", fiber.Map{
		"Title":     "Customers",
		"Active":    "customers",
		"Customers": customers,
		"Search":    search,
	})
}

// CustomerList displays customers, optionally filtered by ?search=
func (h *Handler) CustomerList(c *fiber.Ctx) error {
	return h.customerPage(c, c.Query("search"))
}

// CustomerSearch is the search box target, filtered by ?query=
func (h *Handler) CustomerSearch(c *fiber.Ctx) error {
	return h.customerPage(c, c.Query("query"))
}

// CustomerCreate adds a customer
func (h *Handler) CustomerCreate(c *fiber.Ctx) error {
	if _, err := h.Customers.Create(c.UserContext(), customerInput(c)); err != nil {
		return h.fail(c, err, "/customers")
	}
	return done(c, "Customer added!", "/customers")
}

// CustomerEdit shows the edit form
func (h *Handler) CustomerEdit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	customer, err := h.Customers.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "/customers")
	}
	return h.render(c, "customer_edit", fiber.Map{
		"Title":    "Edit Customer",
		"Active":   "customers",
		"Customer": customer,
	})
}

// CustomerUpdate saves the edit form
func (h *Handler) CustomerUpdate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Customers.Update(c.UserContext(), id, customerInput(c)); err != nil {
		return h.fail(c, err, "/customers")
	}
	return done(c, "Customer updated successfully!", "/customers")
}

// CustomerDelete removes a customer without orders
func (h *Handler) CustomerDelete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Customers.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err, "/customers")
	}
	return done(c, "Customer deleted successfully!", "/customers")
}
