package server

import (
	"recipebox/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Caller's posts, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param tags query string false "Comma separated tag ids"
// @Param ingredients query string false "Comma separated ingredient ids"
// @Success 200 {array} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext(), service.ListPostsInput{
		UserID:      currentUserID(c),
		Tags:        c.Query("tags"),
		Ingredients: c.Query("ingredients"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.postResponses(posts))
}

// GetPost handles GET /api/posts/:id
// @Summary Post detail
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} PostDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	post, err := s.postService.Get(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.postDetailResponse(post))
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description JSON or multipart; multipart may carry an image file
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, upload, err := decodeForm(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.postService.Create(c.UserContext(), service.WritePostInput{
		UserID: currentUserID(c),
		Form:   form,
		Image:  upload,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.postResponse(post))
}

// ReplacePost handles PUT /api/posts/:id
// @Summary Replace a post
// @Description Omitted optional fields are reset and omitted tags/ingredients cleared
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) ReplacePost(c *fiber.Ctx) error {
	return s.writePost(c, false)
}

// PatchPost handles PATCH /api/posts/:id
// @Summary Partially update a post
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) PatchPost(c *fiber.Ctx) error {
	return s.writePost(c, true)
}

func (s *Server) writePost(c *fiber.Ctx, partial bool) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	form, upload, err := decodeForm(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.postService.Update(c.UserContext(), service.WritePostInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Form:    form,
		Image:   upload,
		Partial: partial,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.postResponse(post))
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadPostImage handles POST /api/posts/:id/upload-image
// @Summary Add a picture to a post's gallery
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param image formData file true "Image file"
// @Success 200 {object} ImageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/upload-image [post]
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	_, upload, err := decodeForm(c, "image")
	if err != nil {
		return respondError(c, err)
	}
	img, err := s.postService.AddImage(c.UserContext(), currentUserID(c), postID, upload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s.imageResponse(img))
}
