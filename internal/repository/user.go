package repository

import (
	"context"
	"errors"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByID is served from cache; the returned user carries no password hash.
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByEmail returns nil, nil when no user matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	// TouchConnection stamps last_connection, and first_connection when unset.
	TouchConnection(ctx context.Context, id uint, at time.Time) error
	// Delete removes the user and everything they own, returning media keys.
	Delete(ctx context.Context, id uint) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return r.db.WithContext(ctx).Omit("password").First(&user, id).Error
	})
	if err != nil {
		return nil, translate(err, "User", id)
	}
	user.Password = ""
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) TouchConnection(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ? AND first_connection IS NULL", id).
			UpdateColumn("first_connection", at).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_connection", at).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var (
		files   []string
		postIDs []uint
	)
	err := traced(ctx, "Delete", "users", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var user models.User
			if err := tx.Select("id", "avatar").First(&user, id).Error; err != nil {
				return err
			}

			var posts []models.Post
			if err := tx.Select("id", "image").Where("user_id = ?", id).Find(&posts).Error; err != nil {
				return err
			}
			postIDs = make([]uint, 0, len(posts))
			for _, p := range posts {
				postIDs = append(postIDs, p.ID)
				if p.Image != "" {
					files = append(files, p.Image)
				}
			}
			gallery, err := deletePostTree(tx, postIDs)
			if err != nil {
				return err
			}
			files = append(files, gallery...)
			if user.Avatar != "" {
				files = append(files, user.Avatar)
			}

			for _, model := range []any{
				&models.PostComment{}, &models.PostRate{}, &models.Address{}, &models.Tag{}, &models.Ingredient{},
			} {
				if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&models.User{}, id).Error
		})
	})
	if err != nil {
		return nil, translate(err, "User", id)
	}
	cache.InvalidateUser(ctx, id)
	for _, postID := range postIDs {
		cache.InvalidatePost(ctx, id, postID)
	}
	return files, nil
}
