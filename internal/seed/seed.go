package seed

import (
	"fmt"
	"log"

	"recipebox/internal/models"

	"gorm.io/gorm"
)

// Options configure a generated dataset.
type Options struct {
	NumUsers           int
	PostsPerUser       int
	TagsPerUser        int
	IngredientsPerUser int
	ShouldClean        bool
	Factory            FactoryOptions
}

// Seeder fills a database with generated or fixture data.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll deletes every row of every entity, children first.
func (s *Seeder) ClearAll() error {
	steps := []string{"post_tags", "post_ingredients"}
	for _, table := range steps {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, model := range []any{
		&models.Image{}, &models.PostComment{}, &models.PostRate{}, &models.Post{},
		&models.Tag{}, &models.Ingredient{}, &models.Address{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Seed generates users and everything they own. Each user rates and
// comments on their own posts only, since all data is owner scoped.
func (s *Seeder) Seed(opts Options) ([]*models.User, error) {
	log.Printf("Seeding %d users with %d posts each", opts.NumUsers, opts.PostsPerUser)
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	f := NewFactory(s.db, opts.Factory)
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)

		tags := make([]models.Tag, 0, opts.TagsPerUser)
		for j := 0; j < opts.TagsPerUser; j++ {
			tag, err := f.CreateTag(user, "")
			if err != nil {
				return nil, fmt.Errorf("create tag: %w", err)
			}
			tags = append(tags, *tag)
		}
		ingredients := make([]models.Ingredient, 0, opts.IngredientsPerUser)
		for j := 0; j < opts.IngredientsPerUser; j++ {
			ing, err := f.CreateIngredient(user, "")
			if err != nil {
				return nil, fmt.Errorf("create ingredient: %w", err)
			}
			ingredients = append(ingredients, *ing)
		}

		for j := 0; j < opts.PostsPerUser; j++ {
			post, err := f.CreatePost(user, pick(tags, j), pick(ingredients, j))
			if err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			if _, err := f.CreateComment(user, post); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			if _, err := f.CreateRate(user, post); err != nil {
				return nil, fmt.Errorf("create rate: %w", err)
			}
		}
		if _, err := f.CreateAddress(user); err != nil {
			return nil, fmt.Errorf("create address: %w", err)
		}
	}
	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// pick returns up to two items starting at offset i.
func pick[T any](items []T, i int) []T {
	if len(items) == 0 {
		return nil
	}
	out := []T{items[i%len(items)]}
	if len(items) > 1 {
		out = append(out, items[(i+1)%len(items)])
	}
	return out
}
