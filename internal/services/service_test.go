package services

import (
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"seedream-studio/internal/database"
	"seedream-studio/internal/models"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(
		&models.GenerationResult{},
		&models.GenerationRequest{},
		&models.PromptVersion{},
		&models.Prompt{},
		&models.ModelConfig{},
	)
	err = db.AutoMigrate(
		&models.Prompt{},
		&models.PromptVersion{},
		&models.ModelConfig{},
		&models.GenerationRequest{},
		&models.GenerationResult{},
	)
	if err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}
