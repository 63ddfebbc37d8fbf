package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/api"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/config"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/constants"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/logging"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/matchmaking"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/realtime"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/service"
	"github.com/Alreriabiceps/express-gamified-learning-system-sub001/internal/storage"
)

func main() {
	// Optional .env for local development; the environment wins over the file.
	_ = godotenv.Load()

	// Arena configuration file. Path may be provided via ARENA_CONFIG or
	// defaults to ./arena_config.json in the current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./arena_config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid arena configuration", err, logging.Fields{"config_path": configPath, "hint": "create an arena_config.json with a 'question_list' array of question objects (question_text,choices[4],correct_answer,blooms_level) and optional keys: server.address, room_ttl_minutes"})
	}

	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/arena.db"
	}
	db, err := storage.OpenAndMigrate(dbPath, cfg.Questions)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}

	repo := storage.NewSQLiteRepository(db)
	hub := realtime.NewHub()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := service.NewEngine(repo, hub, rng)
	queue := matchmaking.NewService()
	handler := api.NewHandler(engine, queue, repo, hub)

	// Background sweeper: drop rooms past their TTL from the in-memory
	// registry and the durable mirror.
	roomTTL := time.Duration(cfg.RoomTTLMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			engine.SweepExpired(roomTTL)
		}
	}()

	router := gin.Default()
	handler.RegisterRoutes(router)

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
