package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/services"
)

// APIProducts lists products matching ?search=
func (h *Handler) APIProducts(c *fiber.Ctx) error {
	products, err := h.Products.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return h.apiFail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "products": products})
}

// APICreateProduct adds a product from a multipart form
func (h *Handler) APICreateProduct(c *fiber.Ctx) error {
	in, err := h.productInput(c)
	if err != nil {
		return h.apiFail(c, err)
	}
	product, err := h.Products.Create(c.UserContext(), in)
	if err != nil {
		_ = h.Uploads.Remove(in.ImageURL)
		return h.apiFail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product added successfully",
		"product": product,
	})
}

// APIDeleteProduct removes a product no order uses
func (h *Handler) APIDeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.apiFail(c, err)
	}
	product, err := h.Products.Delete(c.UserContext(), id)
	if err != nil {
		return h.apiFail(c, err)
	}
	if err := h.Uploads.Remove(product.ImageURL); err != nil {
		h.Log.Warn().Err(err).Str("file", product.ImageURL).Msg("could not remove product image")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted successfully"})
}

// APICustomers lists customers matching ?search=
func (h *Handler) APICustomers(c *fiber.Ctx) error {
	customers, err := h.Customers.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return h.apiFail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "customers": customers})
}

// APIOrders lists orders with the same filters as the orders page
func (h *Handler) APIOrders(c *fiber.Ctx) error {
	filter, err := orderFilter(c)
	if err != nil {
		return h.apiFail(c, err)
	}
	orders, err := h.Orders.List(c.UserContext(), filter)
	if err != nil {
		return h.apiFail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

func orderBody(c *fiber.Ctx) (services.OrderInput, error) {
	var in services.OrderInput
	if err := c.BodyParser(&in); err != nil {
		return in, fmt.Errorf("%w: request body is not a valid order", services.ErrValidation)
	}
	return in, nil
}

// APICreateOrder places an order from a JSON body
func (h *Handler) APICreateOrder(c *fiber.Ctx) error {
	in, err := orderBody(c)
	if err != nil {
		return h.apiFail(c, err)
	}
	order, err := h.Orders.Create(c.UserContext(), in)
	if err != nil {
		return h.apiFail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "order": order})
}

// APIUpdateOrder replaces an order from a JSON body
func (h *Handler) APIUpdateOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.apiFail(c, err)
	}
	in, err := orderBody(c)
	if err != nil {
		return h.apiFail(c, err)
	}
	order, err := h.Orders.Update(c.UserContext(), id, in)
	if err != nil {
		return h.apiFail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

// APIDeleteOrder removes an order
func (h *Handler) APIDeleteOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return h.apiFail(c, err)
	}
	if err := h.Orders.Delete(c.UserContext(), id); err != nil {
		return h.apiFail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Order deleted successfully"})
}

// GetSQLLogs returns the recent SQL statements
func (h *Handler) GetSQLLogs(c *fiber.Ctx) error {
	queries := h.Queries.GetRecentQueries(c.QueryInt("limit", 100))
	return c.JSON(fiber.Map{"success": true, "queries": queries, "total": len(queries)})
}

// ClearSQLLogs empties the statement log
func (h *Handler) ClearSQLLogs(c *fiber.Ctx) error {
	h.Queries.Clear()
	return c.JSON(fiber.Map{"success": true, "message": "SQL logs cleared"})
}
