package models

import (
	"time"
)

// PostComment is a note left on a post.
type PostComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title     string    `gorm:"size:255" json:"title"`
	Text      string    `gorm:"size:255" json:"text"`
	Image     string    `gorm:"size:255" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	MinRate = 1
	MaxRate = 5
)

// PostRate is one user's star rating of a post. A user rates a post at most once.
type PostRate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_rates_user_post,priority:2" json:"post"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_rates_user_post,priority:1" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Rate      int       `gorm:"not null" json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RateSummary aggregates the ratings of one post.
type RateSummary struct {
	PostID  uint    `json:"post"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
	Mine    *int    `json:"mine"`
}
