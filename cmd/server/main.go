package main

import (
	"log"
	"os"
	"strings"

	"github.com/benbeisheim/checkers-backend/internal/config"
	"github.com/benbeisheim/checkers-backend/internal/controller"
	"github.com/benbeisheim/checkers-backend/internal/service"
	"github.com/couchbaselabs/logg"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	logg.LogKeys = make(map[string]bool)
	for _, key := range cfg.LogKeys {
		logg.LogKeys[key] = true
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Origins(), ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(func(c *fiber.Ctx) error {
		logg.LogTo("HTTP", "%s %s", c.Method(), c.Path())
		return c.Next()
	})

	// Initialize services
	gameManager := service.NewGameManager(cfg)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager)

	controller.RegisterRoutes(app, gameService, cfg)

	logg.LogTo("SERVICE", "Listening on %s, engine %s depth %d", cfg.ListenAddr, cfg.Algorithm, cfg.SearchDepth)
	log.Fatal(app.Listen(cfg.ListenAddr))
}
