package server

import (
	"github.com/gofiber/fiber/v2"
)

func assignedOnly(c *fiber.Ctx) bool {
	return c.QueryInt("assigned_only", 0) == 1
}

// ListTags handles GET /api/tags
// @Summary List tags
// @Description Caller's tags ordered by name descending
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param assigned_only query int false "1 to list only tags attached to a post"
// @Success 200 {array} TagResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.tagService.List(c.UserContext(), currentUserID(c), assignedOnly(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tagResponses(tags))
}

// CreateTag handles POST /api/tags
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string} true "Tag"
// @Success 201 {object} TagResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /tags [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	tag, err := s.tagService.Create(c.UserContext(), currentUserID(c), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(TagResponse{ID: tag.ID, Name: tag.Name})
}

// ListIngredients handles GET /api/ingredients
// @Summary List ingredients
// @Tags ingredients
// @Produce json
// @Security BearerAuth
// @Param assigned_only query int false "1 to list only ingredients attached to a post"
// @Success 200 {array} TagResponse
// @Router /ingredients [get]
func (s *Server) ListIngredients(c *fiber.Ctx) error {
	items, err := s.ingredientService.List(c.UserContext(), currentUserID(c), assignedOnly(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ingredientResponses(items))
}

// CreateIngredient handles POST /api/ingredients
// @Summary Create an ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string} true "Ingredient"
// @Success 201 {object} TagResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /ingredients [post]
func (s *Server) CreateIngredient(c *fiber.Ctx) error {
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	item, err := s.ingredientService.Create(c.UserContext(), currentUserID(c), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(TagResponse{ID: item.ID, Name: item.Name})
}
