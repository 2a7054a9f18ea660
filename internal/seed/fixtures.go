package seed

import (
	"embed"
	"fmt"
	"os"

	"recipebox/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures/*.yml
var builtinFixtures embed.FS

// Fixture is a hand-written dataset.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

type FixtureUser struct {
	Email       string        `yaml:"email"`
	Password    string        `yaml:"password"`
	Name        string        `yaml:"name"`
	Tags        []string      `yaml:"tags"`
	Ingredients []string      `yaml:"ingredients"`
	Posts       []FixturePost `yaml:"posts"`
}

type FixturePost struct {
	Title       string   `yaml:"title"`
	TimeMinutes int      `yaml:"time_minutes"`
	Price       string   `yaml:"price"`
	Link        string   `yaml:"link"`
	Category    string   `yaml:"category"`
	Content     string   `yaml:"content"`
	Tags        []string `yaml:"tags"`
	Ingredients []string `yaml:"ingredients"`
}

// LoadFixture reads a fixture from path, or the built-in "demo" fixture
// when path is empty.
func LoadFixture(path string) (*Fixture, error) {
	var raw []byte
	var err error
	if path == "" {
		raw, err = builtinFixtures.ReadFile("fixtures/demo.yml")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes and checks a YAML fixture document.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, u := range fx.Users {
		if u.Email == "" {
			return nil, fmt.Errorf("fixture user %d: email is required", i)
		}
		for _, p := range u.Posts {
			if p.Title == "" {
				return nil, fmt.Errorf("fixture user %s: post title is required", u.Email)
			}
			if _, err := models.ParsePrice(p.Price); err != nil {
				return nil, fmt.Errorf("fixture post %q: price: %w", p.Title, err)
			}
			if err := checkNames(p.Tags, u.Tags); err != nil {
				return nil, fmt.Errorf("fixture post %q: %w", p.Title, err)
			}
			if err := checkNames(p.Ingredients, u.Ingredients); err != nil {
				return nil, fmt.Errorf("fixture post %q: %w", p.Title, err)
			}
		}
	}
	return &fx, nil
}

func checkNames(used, declared []string) error {
	known := make(map[string]struct{}, len(declared))
	for _, n := range declared {
		known[n] = struct{}{}
	}
	for _, n := range used {
		if _, ok := known[n]; !ok {
			return fmt.Errorf("unknown name %q", n)
		}
	}
	return nil
}

// ApplyFixture inserts the fixture in one transaction.
func (s *Seeder) ApplyFixture(fx *Fixture, opts FactoryOptions) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		f := NewFactory(tx, opts)
		for _, fu := range fx.Users {
			user, err := f.CreateUser(func(u *models.User) {
				u.Email = fu.Email
				if fu.Name != "" {
					u.Name = fu.Name
				}
			})
			if err != nil {
				return fmt.Errorf("create %s: %w", fu.Email, err)
			}
			if !opts.DryRun && fu.Password != "" && fu.Password != DefaultPassword {
				hash, err := f.hash(fu.Password)
				if err != nil {
					return err
				}
				if err := tx.Model(user).Update("password", hash).Error; err != nil {
					return err
				}
			}

			tags := map[string]models.Tag{}
			for _, name := range fu.Tags {
				tag, err := f.CreateTag(user, name)
				if err != nil {
					return err
				}
				tags[name] = *tag
			}
			ingredients := map[string]models.Ingredient{}
			for _, name := range fu.Ingredients {
				ing, err := f.CreateIngredient(user, name)
				if err != nil {
					return err
				}
				ingredients[name] = *ing
			}

			for _, fp := range fu.Posts {
				price, _ := models.ParsePrice(fp.Price)
				postTags := make([]models.Tag, 0, len(fp.Tags))
				for _, n := range fp.Tags {
					postTags = append(postTags, tags[n])
				}
				postIngredients := make([]models.Ingredient, 0, len(fp.Ingredients))
				for _, n := range fp.Ingredients {
					postIngredients = append(postIngredients, ingredients[n])
				}
				_, err := f.CreatePost(user, postTags, postIngredients, func(p *models.Post) {
					p.Title = fp.Title
					p.TimeMinutes = fp.TimeMinutes
					p.Price = price
					p.Link = fp.Link
					p.Category = fp.Category
					p.Content = fp.Content
					p.StarCount = 0
				})
				if err != nil {
					return fmt.Errorf("create post %q: %w", fp.Title, err)
				}
			}
		}
		return nil
	})
}
