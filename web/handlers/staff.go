package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skincareshop/services"
)

func (h *Handler) staffInput(c *fiber.Ctx) (services.StaffInput, error) {
	in := services.StaffInput{
		FullName: c.FormValue("full_name"),
		Position: c.FormValue("position"),
		Phone:    c.FormValue("phone"),
		Email:    c.FormValue("email"),
		Address:  c.FormValue("address"),
		Gender:   c.FormValue("gender"),
	}
	var err error
	in.ProfilePicture, err = h.Uploads.Save(c, "profile_picture")
	return in, err
}

func (h *Handler) staffPage(c *fiber.Ctx, search string) error {
	staff, err := h.Staff.List(c.UserContext(), search)
	if err != nil {
		return err
	}
	return h.render(c, "staff", fiber.Map{
		"Title":  "Staff",
		"Active": "staff",
		"Staff":  staff,
		"Search": search,
	})
}

// StaffList displays staff, optionally filtered by ?search=
func (h *Handler) StaffList(c *fiber.Ctx) error {
	return h.staffPage(c, c.Query("search"))
}

// StaffSearch is the search box target, filtered by ?query=
func (h *Handler) StaffSearch(c *fiber.Ctx) error {
	return h.staffPage(c, c.Query("query"))
}

// StaffCreate adds a staff member
func (h *Handler) StaffCreate(c *fiber.Ctx) error {
	in, err := h.staffInput(c)
	if err != nil {
		return h.fail(c, err, "/staff")
	}
	if _, err := h.Staff.Create(c.UserContext(), in); err != nil {
		_ = h.Uploads.Remove(in.ProfilePicture)
		return h.fail(c, err, "/staff")
	}
	return done(c, "Staff member added successfully!", "/staff")
}

// StaffEdit shows the edit form
func (h *Handler) StaffEdit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	member, err := h.Staff.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "/staff")
	}
	return h.render(c, "staff_edit", fiber.Map{
		"Title":  "Edit Staff",
		"Active": "staff",
		"Member": member,
	})
}

// StaffUpdate saves the edit form, replacing the picture when a new one
// is uploaded
func (h *Handler) StaffUpdate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	in, err := h.staffInput(c)
	if err != nil {
		return h.fail(c, err, "/staff")
	}
	replaced, err := h.Staff.Update(c.UserContext(), id, in)
	if err != nil {
		_ = h.Uploads.Remove(in.ProfilePicture)
		return h.fail(c, err, "/staff")
	}
	if err := h.Uploads.Remove(replaced); err != nil {
		h.Log.Warn().Err(err).Str("file", replaced).Msg("could not remove old profile picture")
	}
	return done(c, "Staff member updated successfully!", "/staff")
}

// StaffDelete removes a staff member and their picture
func (h *Handler) StaffDelete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	member, err := h.Staff.Delete(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "/staff")
	}
	if err := h.Uploads.Remove(member.ProfilePicture); err != nil {
		h.Log.Warn().Err(err).Str("file", member.ProfilePicture).Msg("could not remove profile picture")
	}
	return done(c, "Staff member deleted successfully!", "/staff")
}
