// Package models contains the persisted entities and the API error taxonomy.
package models

import (
	"time"
)

// User is an account. Everything else in the system is owned by a user.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Email           string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"size:255;not null" json:"-"`
	Name            string     `gorm:"size:255" json:"name"`
	FirstName       string     `gorm:"size:255" json:"first_name"`
	LastName        string     `gorm:"size:255" json:"last_name"`
	Username        string     `gorm:"size:255" json:"username"`
	Country         string     `gorm:"size:255" json:"country"`
	Birthday        *time.Time `gorm:"type:date" json:"birthday"`
	Age             int        `gorm:"not null;default:0" json:"age"`
	Status          string     `gorm:"size:255" json:"status"`
	Avatar          string     `gorm:"size:255" json:"avatar"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	IsStaff         bool       `gorm:"not null;default:false" json:"is_staff"`
	FirstConnection *time.Time `json:"first_connection,omitempty"`
	LastConnection  *time.Time `json:"last_connection,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
