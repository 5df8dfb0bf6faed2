package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/services"
)

func orderFilter(c *fiber.Ctx) (services.OrderFilter, error) {
	return services.ParseOrderFilter(
		c.Query("customer_id"),
		c.Query("start_date"),
		c.Query("end_date"),
		c.Query("search"),
	)
}

func orderForm(c *fiber.Ctx) (services.OrderInput, error) {
	var in services.OrderInput
	customerID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("customer_id")), 10, 64)
	if err != nil || customerID == 0 {
		return in, fmt.Errorf("%w: please choose a customer", services.ErrValidation)
	}
	in.CustomerID = uint(customerID)
	in.Items, err = services.ParseLineItems(formValues(c, "product_ids[]"), formValues(c, "quantities[]"))
	return in, err
}

func (h *Handler) ordersPage(c *fiber.Ctx, orders []services.OrderSummary, filter fiber.Map) error {
	lookups, err := h.Orders.Lookups(c.UserContext())
	if err != nil {
		return err
	}
	return h.render(c, "orders", fiber.Map{
		"Title":     "Orders",
		"Active":    "orders",
		"Orders":    orders,
		"Customers": lookups.Customers,
		"Products":  lookups.Products,
		"Filter":    filter,
	})
}

// OrderList displays orders filtered by customer_id, start_date, end_date
// and search
func (h *Handler) OrderList(c *fiber.Ctx) error {
	filter, err := orderFilter(c)
	if err != nil {
		return h.fail(c, err, "/orders")
	}
	orders, err := h.Orders.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return h.ordersPage(c, orders, fiber.Map{
		"CustomerID": filter.CustomerID,
		"StartDate":  c.Query("start_date"),
		"EndDate":    c.Query("end_date"),
		"Search":     filter.Text,
	})
}

// OrderSearch matches ?query= against order code and customer name
func (h *Handler) OrderSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	orders, err := h.Orders.QuickSearch(c.UserContext(), query)
	if err != nil {
		return err
	}
	return h.ordersPage(c, orders, fiber.Map{
		"CustomerID": uint(0),
		"StartDate":  "",
		"EndDate":    "",
		"Search":     query,
	})
}

// OrderCreate places an order from the order form
func (h *Handler) OrderCreate(c *fiber.Ctx) error {
	in, err := orderForm(c)
	if err != nil {
		return h.fail(c, err, "/orders")
	}
	order, err := h.Orders.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err, "/orders")
	}
	return done(c, fmt.Sprintf("Order %s placed successfully!", order.Code), "/orders")
}

// OrderEdit shows the edit form with the current items
func (h *Handler) OrderEdit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	order, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "/orders")
	}
	lookups, err := h.Orders.Lookups(c.UserContext())
	if err != nil {
		return err
	}
	return h.render(c, "order_edit", fiber.Map{
		"Title":     "Edit Order " + order.Code,
		"Active":    "orders",
		"Order":     order,
		"Customers": lookups.Customers,
		"Products":  lookups.Products,
	})
}

// OrderUpdate replaces the order's customer and items
func (h *Handler) OrderUpdate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	in, err := orderForm(c)
	if err != nil {
		return h.fail(c, err, fmt.Sprintf("/orders/%d/edit", id))
	}
	if _, err := h.Orders.Update(c.UserContext(), id, in); err != nil {
		return h.fail(c, err, fmt.Sprintf("/orders/%d/edit", id))
	}
	return done(c, "Order updated successfully!", "/orders")
}

// OrderDelete removes an order with its items
func (h *Handler) OrderDelete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Orders.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err, "/orders")
	}
	return done(c, "Order deleted successfully!", "/orders")
}

// OrderExport downloads every order as CSV
func (h *Handler) OrderExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.Orders.Export(c.UserContext(), &buf); err != nil {
		return h.fail(c, err, "/orders")
	}
	name := fmt.Sprintf("orders_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(name)
	return c.Send(buf.Bytes())
}
