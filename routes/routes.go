package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "taskboard/controllers"
	"taskboard/core"
	"taskboard/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize logger
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", middleware.LoginRateLimiter(), controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Core components shared by the controllers
	coord := core.NewCoordinator()
	identity := core.NewIdentityStore(db)
	registry := core.NewGroupRegistry(db, identity, coord, log.New(os.Stdout, "GROUP: ", log.LstdFlags))
	ledger := core.NewTaskLedger(db, identity, coord, log.New(os.Stdout, "TASK: ", log.LstdFlags))

	groupController := controller.NewGroupController(registry, log.New(os.Stdout, "GROUP: ", log.LstdFlags))
	taskController := controller.NewTaskController(ledger, registry, log.New(os.Stdout, "TASK: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// User routes
	api.Get("/users/available", controller.GetAvailableUsers)

	// Group routes
	group := api.Group("/groups")
	group.Post("/", groupController.CreateGroup)
	group.Get("/", groupController.GetGroups)
	group.Post("/leave", groupController.LeaveGroup)
	group.Get("/:id", groupController.GetGroup)
	group.Get("/:id/members", groupController.GetGroupMembers)
	group.Patch("/:id", groupController.UpdateGroup)
	group.Post("/:id/join", groupController.JoinGroup)

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", taskController.CreateTask)
	task.Get("/", taskController.GetTasks)
	task.Get("/:id", taskController.GetTask)
	task.Put("/:id", taskController.UpdateTask)
	task.Delete("/:id", taskController.DeleteTask)
	task.Post("/:id/attachments", taskController.UploadAttachment)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
