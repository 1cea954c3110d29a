package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "taskhub/controllers"
	"taskhub/middleware"
	"taskhub/models"
	"taskhub/utils"
)

const requestLogFormat = "[${time}] ${status} - ${latency} ${method} ${path}\n"

// healthEndpoint registers the service health check. It must be mounted
// before any middleware group on the "/" prefix; Protected is a Use on that
// prefix and would otherwise swallow anonymous health probes with a 401.
func healthEndpoint(app *fiber.App, service string) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": service,
			"status":  "running",
		})
	})
}

// SetupUserRoutes mounts the user service: registration, login, token
// refresh, and admin user management.
func SetupUserRoutes(app *fiber.App, db *gorm.DB, secret string) {
	userLogger := log.New(os.Stdout, "USER: ", log.Ldate|log.Ltime|log.Lshortfile)

	authController := controller.NewAuthController(db, secret, userLogger)
	userController := controller.NewUserController(db, userLogger)

	healthEndpoint(app, "userservice")

	api := app.Group("/", logger.New(logger.Config{Format: requestLogFormat}))

	// Public endpoints
	api.Post("/signup", authController.Register)
	api.Post("/login", authController.Login)
	api.Post("/token/refresh", authController.Refresh)

	// Authenticated endpoints
	protected := api.Group("", middleware.Protected(secret))
	protected.Get("/me", authController.Me)
	protected.Post("/users/by-ids", userController.GetUsersByIDs)

	protected.Get("/users",
		middleware.RequireRoles(models.RoleTeamLeader, models.RoleAdmin),
		userController.ListUsers)

	admin := protected.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.Put("/users/:id/role", userController.UpdateRole)
	admin.Put("/users/:id/activate", userController.ToggleActive)
	admin.Delete("/users/:id", userController.DeleteUser)

	userLogger.Println("User service routes initialized successfully")
}

// SetupTeamRoutes mounts the team service.
func SetupTeamRoutes(app *fiber.App, db *gorm.DB, secret string) {
	teamLogger := log.New(os.Stdout, "TEAM: ", log.Ldate|log.Ltime|log.Lshortfile)

	teamController := controller.NewTeamController(db, teamLogger)

	healthEndpoint(app, "teamservice")

	api := app.Group("/", logger.New(logger.Config{Format: requestLogFormat}))
	protected := api.Group("", middleware.Protected(secret))

	protected.Get("/teams", teamController.ListTeams)
	protected.Get("/teams/:id", teamController.TeamDetails)

	protected.Post("/teams/create",
		middleware.RequireRoles(models.RoleAdmin), teamController.CreateTeam)
	protected.Put("/teams/update/:id",
		middleware.RequireRoles(models.RoleTeamLeader, models.RoleAdmin), teamController.UpdateTeam)
	protected.Put("/teams/add-member/:id",
		middleware.RequireRoles(models.RoleTeamLeader), teamController.AddMember)
	protected.Put("/teams/remove-member/:id",
		middleware.RequireRoles(models.RoleTeamLeader), teamController.RemoveMember)
	protected.Delete("/teams/delete/:id",
		middleware.RequireRoles(models.RoleAdmin), teamController.DeleteTeam)

	teamLogger.Println("Team service routes initialized successfully")
}

// SetupTaskRoutes mounts the task service. The two download endpoints stay
// outside the protected group: anonymous download is intended behavior.
func SetupTaskRoutes(app *fiber.App, db *gorm.DB, storage *utils.Storage, secret string) {
	taskLogger := log.New(os.Stdout, "TASK: ", log.Ldate|log.Ltime|log.Lshortfile)

	taskController := controller.NewTaskController(db, storage, taskLogger)
	commentController := controller.NewCommentController(db, storage, taskLogger)
	fileController := controller.NewFileController(db, storage, taskLogger)

	healthEndpoint(app, "taskservice")

	api := app.Group("/", logger.New(logger.Config{Format: requestLogFormat}))

	// Anonymous downloads
	api.Get("/tasks/:id/files/:fileId", fileController.DownloadFile)
	api.Get("/tasks/:id/comments/:commentId/files/:fileId", commentController.DownloadFile)

	protected := api.Group("", middleware.Protected(secret))

	// Tasks
	protected.Get("/tasks", taskController.ListTasks)
	protected.Post("/tasks/create",
		middleware.RequireRoles(models.RoleTeamLeader), taskController.CreateTask)
	protected.Get("/tasks/:id", taskController.TaskDetails)
	protected.Put("/tasks/:id/update",
		middleware.RequireRoles(models.RoleTeamLeader), taskController.UpdateTask)
	protected.Patch("/tasks/:id/update",
		middleware.RequireRoles(models.RoleTeamLeader), taskController.UpdateTask)
	protected.Patch("/tasks/:id/status", taskController.UpdateTaskStatus)
	protected.Delete("/tasks/:id/delete",
		middleware.RequireRoles(models.RoleTeamLeader), taskController.DeleteTask)

	// Comments
	protected.Get("/tasks/:id/comments", commentController.ListComments)
	protected.Post("/tasks/:id/comments/add", commentController.AddComment)
	protected.Delete("/tasks/:id/comments/:commentId/delete", commentController.DeleteComment)
	protected.Post("/tasks/:id/comments/:commentId/files/attach", commentController.AttachFile)
	protected.Delete("/tasks/:id/comments/:commentId/files/:fileId/delete", commentController.DeleteFile)

	// Task files
	protected.Get("/tasks/:id/files", fileController.ListFiles)
	protected.Post("/tasks/:id/files/attach",
		middleware.RequireRoles(models.RoleTeamLeader), fileController.AttachFile)
	protected.Delete("/tasks/:id/files/:fileId/delete",
		middleware.RequireRoles(models.RoleTeamLeader), fileController.DeleteFile)

	taskLogger.Println("Task service routes initialized successfully")
}
