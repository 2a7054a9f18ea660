package models

import (
	"time"
)

// Tag labels posts. Tags are private to their owner.
type Tag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Ingredient is a named recipe component. Ingredients are private to their owner.
type Ingredient struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Post is a recipe entry.
type Post struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"-"`
	User        *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	TimeMinutes int           `gorm:"not null" json:"time_minutes"`
	Price       Price         `gorm:"type:decimal(5,2);not null" json:"price"`
	Link        string        `gorm:"size:255" json:"link"`
	StarCount   int           `gorm:"not null;default:0" json:"star_count"`
	Category    string        `gorm:"size:255" json:"category"`
	Content     string        `gorm:"size:255" json:"content"`
	Image       string        `gorm:"size:255" json:"image"`
	Tags        []Tag         `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []Ingredient  `gorm:"many2many:post_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
	Images      []Image       `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Comments    []PostComment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Rates       []PostRate    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TagIDs returns the ids of the attached tags in their loaded order.
func (p *Post) TagIDs() []uint {
	ids := make([]uint, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// IngredientIDs returns the ids of the attached ingredients in their loaded order.
func (p *Post) IngredientIDs() []uint {
	ids := make([]uint, 0, len(p.Ingredients))
	for _, i := range p.Ingredients {
		ids = append(ids, i.ID)
	}
	return ids
}

// Image is an additional picture attached to a post.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"-"`
	Image     string    `gorm:"size:255;not null" json:"image"`
	CreatedAt time.Time `json:"created_at"`
}
