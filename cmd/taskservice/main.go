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
	"taskhub/utils"
)

func main() {
	logger := log.New(os.Stdout, "TASKSVC: ", log.Ldate|log.Ltime|log.Lshortfile)

	if err := config.LoadConfig("taskservice"); err != nil {
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

	db, err := config.ConnectDB(
		&models.Task{},
		&models.Comment{},
		&models.TaskFile{},
		&models.CommentFile{},
	)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if config.AppConfig.Seed {
		if err := models.SeedTasks(db); err != nil {
			logger.Fatalf("Failed to seed tasks: %v", err)
		}
	}

	storage := utils.NewStorage(config.AppConfig.MediaRoot)

	app := fiber.New()
	app.Use(middleware.CORS())

	routes.SetupTaskRoutes(app, db, storage, config.AppConfig.JWTSecret)

	logger.Printf("🚀 Task service starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
