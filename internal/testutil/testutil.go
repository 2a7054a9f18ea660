// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(string, ...any)
	Cleanup(func())
}

// SQLiteConfig is a test configuration backed by an in-memory sqlite database.
func SQLiteConfig() *config.Config {
	return &config.Config{
		Env:       "test",
		DBDriver:  database.DriverSQLite,
		DBName:    ":memory:",
		JWTSecret: "test-secret-with-enough-length-1234",
	}
}

// NewDB opens a fresh in-memory database with the full schema applied.
func NewDB(t TB) *gorm.DB {
	t.Helper()
	db, err := database.ConnectWithOptions(SQLiteConfig(), database.ConnectOptions{ApplySchema: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts an active user whose password is "testpass123".
func CreateUser(t TB, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: email, Password: string(hash), Name: "Test User", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, G: 80, B: 40, A: 255})
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
