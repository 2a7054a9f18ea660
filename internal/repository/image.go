package repository

import (
	"context"

	"recipebox/internal/cache"
	"recipebox/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines storage operations for post gallery images.
type ImageRepository interface {
	Create(ctx context.Context, ownerID uint, image *models.Image) error
	ListByPost(ctx context.Context, postID uint) ([]models.Image, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository returns a repository implementation for image metadata.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, ownerID uint, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return translate(err, "Image", nil)
	}
	cache.InvalidatePost(ctx, ownerID, image.PostID)
	return nil
}

func (r *imageRepository) ListByPost(ctx context.Context, postID uint) ([]models.Image, error) {
	images := []models.Image{}
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}
