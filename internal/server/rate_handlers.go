package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetRateSummary handles GET /api/posts/:id/rates
// @Summary Rating summary of a post
// @Tags rates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.RateSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/rates [get]
func (s *Server) GetRateSummary(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	summary, err := s.rateService.Summary(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// RatePost handles PUT /api/posts/:id/rates
// @Summary Set the caller's rating of a post
// @Tags rates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{rate=int} true "Rating from 1 to 5"
// @Success 200 {object} RateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/rates [put]
func (s *Server) RatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	rate, err := s.rateService.Upsert(c.UserContext(), currentUserID(c), postID, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(RateResponse{ID: rate.ID, Post: rate.PostID, Rate: rate.Rate})
}
