package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/skincareshop/database"
	"github.com/skincareshop/services"
	"github.com/skincareshop/web/middleware"
)

// Handler carries the services every route handler needs
type Handler struct {
	Orders    *services.OrderService
	Products  *services.ProductService
	Customers *services.CustomerService
	Staff     *services.StaffService
	Auth      *services.AuthService
	Sessions  *middleware.SessionManager
	Queries   *database.QueryLogger
	Uploads   *Uploads
	Log       zerolog.Logger
}

// render draws a page inside the base layout with the shared locals
func (h *Handler) render(c *fiber.Ctx, page string, data fiber.Map) error {
	data["User"] = middleware.CurrentUser(c)
	data["Flash"] = middleware.PopFlash(c)
	queries := middleware.RequestQueries(c, h.Queries)
	data["SQLQueries"] = queries
	data["TotalSQLQueries"] = len(queries)
	return c.Render("pages/"+page, data, "layouts/base")
}

// StatusFor maps an error kind to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrReferenced):
		return fiber.StatusConflict
	case errors.Is(err, database.ErrPoolExhausted):
		return fiber.StatusServiceUnavailable
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
}

// Message is the user facing text for err. Internal failures are not
// described in detail.
func Message(err error) string {
	switch StatusFor(err) {
	case fiber.StatusServiceUnavailable:
		return "The shop is busy right now, please try again in a moment."
	case fiber.StatusInternalServerError:
		return "Something went wrong, please try again."
	}
	msg := err.Error()
	for _, kind := range []error{services.ErrValidation, services.ErrNotFound, services.ErrReferenced} {
		msg = strings.TrimPrefix(msg, kind.Error()+": ")
	}
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	return msg
}

func (h *Handler) logFailure(c *fiber.Ctx, err error) {
	event := h.Log.Warn()
	if StatusFor(err) >= fiber.StatusInternalServerError {
		event = h.Log.Error()
	}
	requestID, _ := c.Locals("requestid").(string)
	event.Err(err).Str("request_id", requestID).Str("path", c.Path()).Msg("request failed")
}

// fail sends a page user back to `to` with the error as a flash message
func (h *Handler) fail(c *fiber.Ctx, err error, to string) error {
	h.logFailure(c, err)
	middleware.SetFlash(c, "danger", Message(err))
	return c.Redirect(to)
}

// done sends a page user to `to` with a success message
func done(c *fiber.Ctx, message, to string) error {
	middleware.SetFlash(c, "success", message)
	return c.Redirect(to)
}

// apiFail answers a JSON request with the error
func (h *Handler) apiFail(c *fiber.Ctx, err error) error {
	h.logFailure(c, err)
	return c.Status(StatusFor(err)).JSON(fiber.Map{
		"success": false,
		"message": Message(err),
	})
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "no such record")
	}
	return uint(id), nil
}

// formValues returns every value posted under key, for both urlencoded
// and multipart bodies
func formValues(c *fiber.Ctx, key string) []string {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil
		}
		return form.Value[key]
	}
	raw := c.Request().PostArgs().PeekMulti(key)
	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = string(v)
	}
	return values
}
