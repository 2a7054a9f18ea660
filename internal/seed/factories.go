// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"

	"recipebox/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

// FactoryOptions tune how entities are generated.
type FactoryOptions struct {
	// DryRun assigns synthetic ids and skips every database write.
	DryRun bool
	// SkipBcrypt stores a cheap hash, for large local datasets.
	SkipBcrypt bool
	// Seed makes gofakeit output reproducible when non-zero.
	Seed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   FactoryOptions
	faker  *gofakeit.Faker
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	return &Factory{db: db, opts: opts, faker: gofakeit.New(opts.Seed), nextID: 1000}
}

func (f *Factory) hash(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (f *Factory) persist(kind string, v any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] create %s id=%d", kind, *id)
		return nil
	}
	return f.db.Create(v).Error
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	user := &models.User{
		Email:     strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, f.faker.Number(100, 99999))),
		Name:      first + " " + last,
		FirstName: first,
		LastName:  last,
		Username:  strings.ToLower(first) + fmt.Sprint(f.faker.Number(10, 999)),
		Country:   f.faker.Country(),
		Age:       f.faker.Number(18, 80),
		Status:    f.faker.RandomString([]string{"cooking", "hungry", "on a diet", ""}),
		IsActive:  true,
	}
	hash, err := f.hash(DefaultPassword)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	for _, override := range overrides {
		override(user)
	}
	if err := f.persist("user", user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTag persists a tag owned by user.
func (f *Factory) CreateTag(user *models.User, name string) (*models.Tag, error) {
	if name == "" {
		name = f.faker.RandomString(tagNames)
	}
	tag := &models.Tag{UserID: user.ID, Name: name}
	if err := f.persist("tag", tag, &tag.ID); err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateIngredient persists an ingredient owned by user.
func (f *Factory) CreateIngredient(user *models.User, name string) (*models.Ingredient, error) {
	if name == "" {
		name = f.faker.Vegetable()
	}
	ing := &models.Ingredient{UserID: user.ID, Name: name}
	if err := f.persist("ingredient", ing, &ing.ID); err != nil {
		return nil, err
	}
	return ing, nil
}

// CreatePost persists a sample recipe post linked to the given tags and ingredients.
func (f *Factory) CreatePost(user *models.User, tags []models.Tag, ingredients []models.Ingredient, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:      user.ID,
		Title:       truncate(f.faker.Dessert()+" "+f.faker.RandomString([]string{"bowl", "tart", "stew", "salad", "bake"}), 255),
		TimeMinutes: f.faker.Number(5, 180),
		Price:       models.PriceFromCents(int64(f.faker.Number(100, 4999))),
		Link:        f.faker.URL(),
		StarCount:   f.faker.Number(0, 5),
		Category:    f.faker.RandomString(categories),
		Content:     truncate(f.faker.Sentence(12), 255),
		Tags:        tags,
		Ingredients: ingredients,
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.persist("post", post, &post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.PostComment, error) {
	c := &models.PostComment{
		UserID: user.ID,
		PostID: post.ID,
		Title:  truncate(f.faker.Sentence(3), 255),
		Text:   truncate(f.faker.Sentence(15), 255),
	}
	if err := f.persist("comment", c, &c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateRate persists user's rate of post.
func (f *Factory) CreateRate(user *models.User, post *models.Post) (*models.PostRate, error) {
	r := &models.PostRate{UserID: user.ID, PostID: post.ID, Rate: f.faker.Number(models.MinRate, models.MaxRate)}
	if err := f.persist("rate", r, &r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateAddress persists a postal address for user.
func (f *Factory) CreateAddress(user *models.User) (*models.Address, error) {
	addr := f.faker.Address()
	postcode := f.faker.Number(10000, 99999)
	a := &models.Address{
		UserID:   user.ID,
		Street:   addr.Street,
		City:     addr.City,
		Country:  addr.Country,
		Postcode: &postcode,
	}
	if err := f.persist("address", a, &a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	tagNames   = []string{"Vegan", "Vegetarian", "Quick", "Dessert", "Breakfast", "Dinner", "Spicy", "Gluten free"}
	categories = []string{"starter", "main", "dessert", "drink", "snack"}
)
