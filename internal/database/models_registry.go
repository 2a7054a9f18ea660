package database

import "recipebox/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Post{},
		&models.Image{},
		&models.Address{},
		&models.PostComment{},
		&models.PostRate{},
	}
}
