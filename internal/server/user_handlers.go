package server

import (
	"recipebox/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/users/me
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// UpdateMe handles PATCH /api/users/me
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	user, err := s.userService.Update(c.UserContext(), currentUserID(c), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// UploadAvatar handles PUT /api/users/me/avatar
// @Summary Replace the current user's avatar
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/avatar [put]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	_, upload, err := decodeForm(c, "avatar")
	if err != nil {
		return respondError(c, err)
	}
	user, err := s.userService.SetAvatar(c.UserContext(), currentUserID(c), upload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// DeleteMe handles DELETE /api/users/me
// @Summary Delete the current account and everything it owns
// @Tags users
// @Security BearerAuth
// @Success 204
// @Router /users/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if err := s.userService.Delete(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	if err := s.authService.Revoke(c.UserContext(), currentClaims(c)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revoke after account delete failed", "error", err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
