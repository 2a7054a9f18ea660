package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/posts/:id/comments
// @Summary List comments of a post
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {array} CommentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.List(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, commentResponse(&comments[i]))
	}
	return c.JSON(out)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{title=string,text=string,image=string} true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	form, _, err := decodeForm(c, "")
	if err != nil {
		return respondError(c, err)
	}
	comment, err := s.commentService.Create(c.UserContext(), currentUserID(c), postID, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(commentResponse(comment))
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
// @Summary Delete a comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId", "Comment")
	if err != nil {
		return nil
	}
	if err := s.commentService.Delete(c.UserContext(), currentUserID(c), postID, commentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
