package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/services"
)

func (h *Handler) productInput(c *fiber.Ctx) (services.ProductInput, error) {
	in, err := services.ParseProductInput(
		c.FormValue("code"),
		c.FormValue("name"),
		c.FormValue("qty"),
		c.FormValue("price"),
		c.FormValue("category"),
	)
	if err != nil {
		return in, err
	}
	in.ImageURL, err = h.Uploads.Save(c, "image")
	return in, err
}

// ProductList displays the catalogue
func (h *Handler) ProductList(c *fiber.Ctx) error {
	search := c.Query("search")
	products, err := h.Products.List(c.UserContext(), search)
	if err != nil {
		return err
	}
	return h.render(c, "products", fiber.Map{
		"Title":    "Products",
		"Active":   "products",
		"Products": products,
		"Search":   search,
	})
}

// ProductCreate adds a product
func (h *Handler) ProductCreate(c *fiber.Ctx) error {
	in, err := h.productInput(c)
	if err != nil {
		return h.fail(c, err, "/products")
	}
	if _, err := h.Products.Create(c.UserContext(), in); err != nil {
		_ = h.Uploads.Remove(in.ImageURL)
		return h.fail(c, err, "/products")
	}
	return done(c, "Product added successfully!", "/products")
}

// ProductEdit shows the edit form
func (h *Handler) ProductEdit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	product, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "/products")
	}
	return h.render(c, "product_edit", fiber.Map{
		"Title":   "Edit Product",
		"Active":  "products",
		"Product": product,
	})
}

// ProductUpdate saves the edit form
func (h *Handler) ProductUpdate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	in, err := h.productInput(c)
	if err != nil {
		return h.fail(c, err, c.Path()+"/edit")
	}
	replaced, err := h.Products.Update(c.UserContext(), id, in)
	if err != nil {
		_ = h.Uploads.Remove(in.ImageURL)
		return h.fail(c, err, "/products")
	}
	if err := h.Uploads.Remove(replaced); err != nil {
		h.Log.Warn().Err(err).Str("file", replaced).Msg("could not remove old product image")
	}
	return done(c, "Product updated successfully!", "/products")
}

// ProductDelete removes a product that no order uses
func (h *Handler) ProductDelete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	product, err := h.Products.Delete(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "/products")
	}
	if err := h.Uploads.Remove(product.ImageURL); err != nil {
		h.Log.Warn().Err(err).Str("file", product.ImageURL).Msg("could not remove product image")
	}
	return done(c, "Product deleted!", "/products")
}
