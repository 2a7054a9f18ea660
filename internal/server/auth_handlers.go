package server

import (
	"recipebox/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new account and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,name=string} true "Signup request"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.authService.Signup(c.UserContext(), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: res.Token, User: s.userResponse(res.User)})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.authService.Login(c.UserContext(), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(AuthResponse{Token: res.Token, User: s.userResponse(res.User)})
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the current token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Revoke(c.UserContext(), currentClaims(c)); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
