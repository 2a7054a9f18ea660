package service

import (
	"context"

	"recipebox/internal/models"
	"recipebox/internal/notifications"
	"recipebox/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	events   EventPublisher
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, events EventPublisher) *CommentService {
	return &CommentService{comments: comments, posts: posts, events: events}
}

// List returns the comments on one of the caller's posts, newest first.
func (s *CommentService) List(ctx context.Context, userID, postID uint) ([]models.PostComment, error) {
	if err := s.posts.Exists(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

// Create stores a comment by userID on one of their posts.
func (s *CommentService) Create(ctx context.Context, userID, postID uint, form Form) (*models.PostComment, error) {
	if err := s.posts.Exists(ctx, userID, postID); err != nil {
		return nil, err
	}

	fe := models.FieldErrors{}
	comment := &models.PostComment{PostID: postID, UserID: userID}
	comment.Title, _ = form.Text(fe, "title", false, false)
	comment.Text, _ = form.Text(fe, "text", false, false)
	comment.Image, _ = form.Text(fe, "image", false, false)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	publish(ctx, s.events, userID, notifications.Event{
		Type:    notifications.EventCommentCreated,
		Payload: comment,
	})
	return comment, nil
}

// Delete removes one of the caller's comments.
func (s *CommentService) Delete(ctx context.Context, userID, postID, commentID uint) error {
	if err := s.posts.Exists(ctx, userID, postID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, userID, postID, commentID)
}
