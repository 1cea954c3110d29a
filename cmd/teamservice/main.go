package main

import (
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"taskhub/config"
	"taskhub/middleware"
	"taskhub/models"
	"taskhub/routes"
)

func main() {
	logger := log.New(os.Stdout, "TEAMSVC: ", log.Ldate|log.Ltime|log.Lshortfile)

	if err := config.LoadConfig("teamservice"); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if dsn := config.AppConfig.SentryDSN; dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Fatalf("Failed to initialize sentry: %v", err)
		}
	}

	db, err := config.ConnectDB(&models.Team{}, &models.TeamUser{})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if config.AppConfig.Seed {
		if err := models.SeedTeams(db); err != nil {
			logger.Fatalf("Failed to seed teams: %v", err)
		}
	}

	app := fiber.New()
	app.Use(middleware.CORS())

	routes.SetupTeamRoutes(app, db, config.AppConfig.JWTSecret)

	logger.Printf("🚀 Team service starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
