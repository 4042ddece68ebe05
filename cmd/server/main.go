package main

import (
	"log"

	"github.com/Rajat-oss/GameHubBack/internal/config"
	"github.com/Rajat-oss/GameHubBack/internal/database"
	"github.com/Rajat-oss/GameHubBack/internal/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	// 3. Connect to Redis. Chat degrades to the local fallback while
	// Redis is unreachable, so a failed ping is not fatal.
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required")
	}
	if err := database.ConnectRedis(cfg.RedisURL); err != nil {
		if database.Redis == nil {
			log.Fatalf("Failed to configure redis: %v", err)
		}
		log.Printf("Redis unreachable, chat starts degraded: %v", err)
	}
	defer database.CloseRedis()

	// 4. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, database.DB, database.Redis)

	// 5. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
