package repository

import (
	"context"

	"recipebox/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.PostComment) error
	ListByPost(ctx context.Context, postID uint) ([]models.PostComment, error)
	// Delete removes a comment written by userID on postID.
	Delete(ctx context.Context, userID, postID, commentID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.PostComment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error, "Comment", nil)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.PostComment, error) {
	comments := []models.PostComment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, userID, postID, commentID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ? AND user_id = ?", commentID, postID, userID).
		Delete(&models.PostComment{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", commentID)
	}
	return nil
}
