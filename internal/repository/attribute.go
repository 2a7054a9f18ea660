package repository

import (
	"context"

	"recipebox/internal/models"

	"gorm.io/gorm"
)

// Attribute is a user-owned label that can be attached to posts.
type Attribute interface {
	models.Tag | models.Ingredient
}

// AttributeRepository defines persistence for tags and ingredients.
type AttributeRepository[T Attribute] interface {
	// List returns the user's rows ordered by name descending. With
	// assignedOnly it keeps rows attached to at least one post.
	List(ctx context.Context, userID uint, assignedOnly bool) ([]T, error)
	Create(ctx context.Context, item *T) error
	// OwnedIDs returns the subset of ids that exist and belong to userID.
	OwnedIDs(ctx context.Context, userID uint, ids []uint) ([]uint, error)
}

type (
	TagRepository        = AttributeRepository[models.Tag]
	IngredientRepository = AttributeRepository[models.Ingredient]
)

type attributeRepository[T Attribute] struct {
	db        *gorm.DB
	resource  string
	table     string
	joinTable string
	joinKey   string
}

// NewTagRepository creates a repository for tags.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &attributeRepository[models.Tag]{
		db: db, resource: "Tag", table: "tags", joinTable: "post_tags", joinKey: "tag_id",
	}
}

// NewIngredientRepository creates a repository for ingredients.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &attributeRepository[models.Ingredient]{
		db: db, resource: "Ingredient", table: "ingredients", joinTable: "post_ingredients", joinKey: "ingredient_id",
	}
}

func (r *attributeRepository[T]) List(ctx context.Context, userID uint, assignedOnly bool) ([]T, error) {
	items := []T{}
	err := traced(ctx, "List", r.table, func(ctx context.Context) error {
		q := r.db.WithContext(ctx).Where("user_id = ?", userID)
		if assignedOnly {
			q = q.Where("id IN (?)", r.db.Table(r.joinTable).Select(r.joinKey))
		}
		return q.Order("name DESC").Order("id DESC").Find(&items).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *attributeRepository[T]) Create(ctx context.Context, item *T) error {
	err := traced(ctx, "Create", r.table, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(item).Error
	})
	return translate(err, r.resource, nil)
}

func (r *attributeRepository[T]) OwnedIDs(ctx context.Context, userID uint, ids []uint) ([]uint, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []uint{}, nil
	}
	var found []uint
	err := traced(ctx, "OwnedIDs", r.table, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Model(new(T)).
			Where("user_id = ? AND id IN ?", userID, ids).
			Pluck("id", &found).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return found, nil
}
