package database

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"seedream-studio/internal/models"
)

var DB *gorm.DB

// Connect opens the SQLite store at the given path, creating the parent
// directory if needed.
func Connect(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// Migrate applies the schema for all persisted entities.
func Migrate() error {
	return DB.AutoMigrate(
		&models.Prompt{},
		&models.PromptVersion{},
		&models.ModelConfig{},
		&models.GenerationRequest{},
		&models.GenerationResult{},
	)
}
