package repository

import (
	"context"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. A non-nil id list keeps posts linked to
// any of the ids, so a list whose ids cannot exist (such as 0) matches
// nothing. Both lists must match when given together.
type PostFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// PostRelations carries the many-to-many links written with a post.
// A relation is rewritten only when its Replace flag is set.
type PostRelations struct {
	TagIDs             []uint
	IngredientIDs      []uint
	ReplaceTags        bool
	ReplaceIngredients bool
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	List(ctx context.Context, userID uint, filter PostFilter) ([]*models.Post, error)
	GetByID(ctx context.Context, userID, postID uint) (*models.Post, error)
	Exists(ctx context.Context, userID, postID uint) error
	Create(ctx context.Context, post *models.Post, rel PostRelations) error
	// Update writes the named columns of post and the flagged relations.
	Update(ctx context.Context, post *models.Post, columns []string, rel PostRelations) error
	// Delete removes the post and everything hanging off it. It returns the
	// media keys the post referenced so callers can drop the files.
	Delete(ctx context.Context, userID, postID uint) ([]string, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func preloadRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id") })
}

func (r *postRepository) List(ctx context.Context, userID uint, filter PostFilter) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := traced(ctx, "List", "posts", func(ctx context.Context) error {
		tagIDs, ingredientIDs := uniqueIDs(filter.TagIDs), uniqueIDs(filter.IngredientIDs)
		if (filter.TagIDs != nil && len(tagIDs) == 0) || (filter.IngredientIDs != nil && len(ingredientIDs) == 0) {
			return nil
		}

		q := preloadRelations(r.db.WithContext(ctx)).Where("user_id = ?", userID)
		if len(tagIDs) > 0 {
			q = q.Where("id IN (?)", r.db.Table("post_tags").Select("post_id").Where("tag_id IN ?", tagIDs))
		}
		if len(ingredientIDs) > 0 {
			q = q.Where("id IN (?)", r.db.Table("post_ingredients").Select("post_id").Where("ingredient_id IN ?", ingredientIDs))
		}
		return q.Order("id DESC").Find(&posts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, userID, postID uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostDetailKey(userID, postID), &post, cache.PostDetailTTL, func() error {
		return traced(ctx, "GetByID", "posts", func(ctx context.Context) error {
			return preloadRelations(r.db.WithContext(ctx)).
				Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.id") }).
				Where("user_id = ?", userID).
				First(&post, postID).Error
		})
	})
	if err != nil {
		return nil, translate(err, "Post", postID)
	}
	// The owner is part of the cache key, not the cached body.
	post.UserID = userID
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, userID, postID uint) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, rel PostRelations) error {
	err := traced(ctx, "Create", "posts", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Tags", "Ingredients", "Images", "Comments", "Rates").Create(post).Error; err != nil {
				return err
			}
			rel.ReplaceTags, rel.ReplaceIngredients = true, true
			return writeRelations(tx, post.ID, rel)
		})
	})
	if err != nil {
		return translate(err, "Post", nil)
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, columns []string, rel PostRelations) error {
	err := traced(ctx, "Update", "posts", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			q := tx.Model(&models.Post{}).Where("id = ? AND user_id = ?", post.ID, post.UserID)
			if len(columns) > 0 {
				selected := append(append([]string{}, columns...), "updated_at")
				res := q.Select(selected).Updates(post)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
			} else {
				// Relation-only update: still prove ownership and bump updated_at.
				res := q.Update("updated_at", time.Now())
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
			}
			return writeRelations(tx, post.ID, rel)
		})
	})
	if err != nil {
		return translate(err, "Post", post.ID)
	}
	cache.InvalidatePost(ctx, post.UserID, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, userID, postID uint) ([]string, error) {
	var files []string
	err := traced(ctx, "Delete", "posts", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var post models.Post
			if err := tx.Select("id", "image").Where("user_id = ?", userID).First(&post, postID).Error; err != nil {
				return err
			}
			var err error
			files, err = deletePostTree(tx, []uint{post.ID})
			if post.Image != "" {
				files = append(files, post.Image)
			}
			return err
		})
	})
	if err != nil {
		return nil, translate(err, "Post", postID)
	}
	cache.InvalidatePost(ctx, userID, postID)
	return files, nil
}

// deletePostTree removes posts and their dependent rows, returning the
// gallery image keys that were attached. FK cascades would do the same on
// postgres; doing it explicitly keeps drivers without enforcement consistent.
func deletePostTree(tx *gorm.DB, postIDs []uint) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var files []string
	if err := tx.Model(&models.Image{}).Where("post_id IN ?", postIDs).Pluck("image", &files).Error; err != nil {
		return nil, err
	}
	steps := []func() error{
		func() error { return tx.Exec("DELETE FROM post_tags WHERE post_id IN ?", postIDs).Error },
		func() error { return tx.Exec("DELETE FROM post_ingredients WHERE post_id IN ?", postIDs).Error },
		func() error { return tx.Where("post_id IN ?", postIDs).Delete(&models.Image{}).Error },
		func() error { return tx.Where("post_id IN ?", postIDs).Delete(&models.PostComment{}).Error },
		func() error { return tx.Where("post_id IN ?", postIDs).Delete(&models.PostRate{}).Error },
		func() error { return tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func writeRelations(tx *gorm.DB, postID uint, rel PostRelations) error {
	if rel.ReplaceTags {
		if err := replaceJoinRows(tx, "post_tags", "tag_id", postID, rel.TagIDs); err != nil {
			return err
		}
	}
	if rel.ReplaceIngredients {
		if err := replaceJoinRows(tx, "post_ingredients", "ingredient_id", postID, rel.IngredientIDs); err != nil {
			return err
		}
	}
	return nil
}

func replaceJoinRows(tx *gorm.DB, table, refColumn string, postID uint, ids []uint) error {
	if err := tx.Exec("DELETE FROM "+table+" WHERE post_id = ?", postID).Error; err != nil {
		return err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, map[string]any{"post_id": postID, refColumn: id})
	}
	return tx.Table(table).Create(&rows).Error
}
