package main

import (
	"log"

	"seedream-studio/config"
	"seedream-studio/internal/api"
	"seedream-studio/internal/database"
	"seedream-studio/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if _, err := database.Connect(cfg.DBPath); err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Migrate the schema
	if err := database.Migrate(); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := database.ConnectRedis(cfg); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	router := api.NewRouter(cfg)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
