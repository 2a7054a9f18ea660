package service

import (
	"context"

	"recipebox/internal/models"
	"recipebox/internal/repository"
)

// AttributeService manages tags or ingredients.
type AttributeService[T repository.Attribute] struct {
	repo  repository.AttributeRepository[T]
	build func(userID uint, name string) *T
}

type (
	TagService        = AttributeService[models.Tag]
	IngredientService = AttributeService[models.Ingredient]
)

func NewTagService(repo repository.TagRepository) *TagService {
	return &AttributeService[models.Tag]{
		repo:  repo,
		build: func(userID uint, name string) *models.Tag { return &models.Tag{UserID: userID, Name: name} },
	}
}

func NewIngredientService(repo repository.IngredientRepository) *IngredientService {
	return &AttributeService[models.Ingredient]{
		repo:  repo,
		build: func(userID uint, name string) *models.Ingredient { return &models.Ingredient{UserID: userID, Name: name} },
	}
}

// List returns the caller's items ordered by name descending.
func (s *AttributeService[T]) List(ctx context.Context, userID uint, assignedOnly bool) ([]T, error) {
	return s.repo.List(ctx, userID, assignedOnly)
}

// Create validates name and stores a new item owned by userID.
func (s *AttributeService[T]) Create(ctx context.Context, userID uint, form Form) (*T, error) {
	fe := models.FieldErrors{}
	name, _ := form.Text(fe, "name", true, false)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	item := s.build(userID, name)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
