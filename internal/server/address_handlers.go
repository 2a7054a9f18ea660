package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListAddresses handles GET /api/addresses
// @Summary List the caller's addresses
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Address
// @Router /addresses [get]
func (s *Server) ListAddresses(c *fiber.Ctx) error {
	addrs, err := s.addressService.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addrs)
}

// CreateAddress handles POST /api/addresses
// @Summary Create an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Address true "Address"
// @Success 201 {object} models.Address
// @Failure 400 {object} models.ErrorResponse
// @Router /addresses [post]
func (s *Server) CreateAddress(c *fiber.Ctx) error {
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	addr, err := s.addressService.Create(c.UserContext(), currentUserID(c), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

// GetAddress handles GET /api/addresses/:id
// @Summary Get an address
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 200 {object} models.Address
// @Failure 404 {object} models.ErrorResponse
// @Router /addresses/{id} [get]
func (s *Server) GetAddress(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Address")
	if err != nil {
		return nil
	}
	addr, err := s.addressService.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addr)
}

// ReplaceAddress handles PUT /api/addresses/:id
// @Summary Replace an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 200 {object} models.Address
// @Failure 404 {object} models.ErrorResponse
// @Router /addresses/{id} [put]
func (s *Server) ReplaceAddress(c *fiber.Ctx) error {
	return s.writeAddress(c, false)
}

// PatchAddress handles PATCH /api/addresses/:id
// @Summary Partially update an address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 200 {object} models.Address
// @Failure 404 {object} models.ErrorResponse
// @Router /addresses/{id} [patch]
func (s *Server) PatchAddress(c *fiber.Ctx) error {
	return s.writeAddress(c, true)
}

func (s *Server) writeAddress(c *fiber.Ctx, partial bool) error {
	id, err := parseID(c, "id", "Address")
	if err != nil {
		return nil
	}
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	addr, err := s.addressService.Update(c.UserContext(), currentUserID(c), id, form, partial)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addr)
}

// DeleteAddress handles DELETE /api/addresses/:id
// @Summary Delete an address
// @Tags addresses
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /addresses/{id} [delete]
func (s *Server) DeleteAddress(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Address")
	if err != nil {
		return nil
	}
	if err := s.addressService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
