package routes

import (
	"esgframe/backend/config"
	"esgframe/backend/controllers"
	"esgframe/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Get("/api/auth/me", authController.Me)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Framework read routes
	frameworkController := controllers.NewFrameworkController(db, cfg)
	variablesController := controllers.NewVariablesController(db, cfg)
	app.Get("/api/pillars", authMiddleware, frameworkController.GetPillars)
	app.Get("/api/pillars/:id/levers", authMiddleware, frameworkController.GetLevers)
	app.Get("/api/levers/:id/variables", authMiddleware, variablesController.GetLeverTree)
	app.Get("/api/variables/:id/stats", authMiddleware, variablesController.GetVariableStats)

	// Overview routes
	overviewController := controllers.NewOverviewController(db, cfg)
	app.Get("/api/overview/variables", authMiddleware, overviewController.SearchVariables)
	app.Get("/api/overview/surveys", authMiddleware, overviewController.SearchSurveys)

	// Survey routes
	surveysController := controllers.NewSurveysController(db, cfg)
	responsesController := controllers.NewResponsesController(db, cfg)
	surveys := app.Group("/api/surveys")
	surveys.Get("/", authMiddleware, surveysController.GetSurveys)
	surveys.Get("/:id", surveysController.GetSurvey)
	// Submission stays open so anonymous-enabled surveys work without a token
	surveys.Post("/:id/responses", responsesController.SubmitResponse)

	// Response routes
	responses := app.Group("/api/responses")
	responses.Get("/:id", responsesController.GetResponse)
	responses.Post("/:id/submit", responsesController.FinalizeResponse)
	responses.Get("/:id/score", responsesController.GetResponseScore)
	responses.Get("/:id/overview", responsesController.GetResponseOverview)

	// Admin routes for the framework tree
	adminPillars := app.Group("/api/admin/pillars", authMiddleware, adminMiddleware)
	adminPillars.Post("/", frameworkController.CreatePillar)
	adminPillars.Put("/:id", frameworkController.UpdatePillar)
	adminPillars.Put("/:id/toggle", frameworkController.TogglePillar)
	adminPillars.Delete("/:id", frameworkController.DeletePillar)
	adminPillars.Post("/:id/levers", frameworkController.CreateLever)

	adminLevers := app.Group("/api/admin/levers", authMiddleware, adminMiddleware)
	adminLevers.Put("/:id", frameworkController.UpdateLever)
	adminLevers.Put("/:id/toggle", frameworkController.ToggleLever)

	adminVariables := app.Group("/api/admin/variables", authMiddleware, adminMiddleware)
	adminVariables.Post("/", variablesController.CreateVariable)
	adminVariables.Put("/:id", variablesController.UpdateVariable)
	adminVariables.Get("/:id/can-move", variablesController.CanMoveVariable)
	adminVariables.Put("/:id/move", variablesController.MoveVariable)
	adminVariables.Post("/:id/clone", variablesController.CloneVariable)
	adminVariables.Put("/:id/toggle", variablesController.ToggleVariable)
	adminVariables.Delete("/:id", variablesController.DeleteVariable)
	adminVariables.Post("/:id/questions", variablesController.ImportQuestions)
	adminVariables.Put("/:id/questions/:questionId", variablesController.UpdateQuestion)
	adminVariables.Delete("/:id/questions/:questionId", variablesController.DeleteQuestion)

	// Admin routes for surveys
	adminSurveys := app.Group("/api/admin/surveys", authMiddleware, adminMiddleware)
	adminSurveys.Post("/", surveysController.CreateSurvey)
	adminSurveys.Put("/:id/questions", surveysController.RefreezeSurvey)
	adminSurveys.Put("/:id/toggle", surveysController.ToggleSurvey)
	adminSurveys.Get("/:id/responses", responsesController.GetSurveyResponses)
}
