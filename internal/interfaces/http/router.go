package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/crm-api/internal/application/analytics"
	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// RateLimitConfig límites por IP. Requests=0 desactiva el límite general.
type RateLimitConfig struct {
	Requests     int
	Window       time.Duration
	AuthRequests int // login y registro
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	CustomerUC    *usecase.CustomerUseCase
	OpportunityUC *usecase.OpportunityUseCase
	ActivityUC    *usecase.ActivityUseCase
	InteractionUC *usecase.InteractionUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	Health        *HealthHandler

	JWTSecret string
	JWTIssuer string
	RateLimit RateLimitConfig
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Health (público, fuera del rate limit)
	if deps.Health != nil {
		api.Get("/health", deps.Health.Check)
	}

	if deps.RateLimit.Requests > 0 {
		api.Use(NewRateLimiter(deps.RateLimit.Requests, deps.RateLimit.Window).Handler())
	}

	requireAuth := AuthMiddleware(deps.JWTSecret, deps.JWTIssuer, deps.UserUC)

	// Auth
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	credentials := []fiber.Handler{}
	if deps.RateLimit.AuthRequests > 0 {
		credentials = append(credentials, NewRateLimiter(deps.RateLimit.AuthRequests, deps.RateLimit.Window).Handler())
	}
	authGroup.Post("/register", append(credentials, authHandler.Register)...)
	authGroup.Post("/login", append(credentials, authHandler.Login)...)
	authGroup.Get("/profile", requireAuth, authHandler.Profile)
	authGroup.Put("/profile", requireAuth, authHandler.UpdateProfile)
	authGroup.Post("/change-password", requireAuth, authHandler.ChangePassword)
	authGroup.Post("/refresh", requireAuth, authHandler.Refresh)
	authGroup.Get("/users", requireAuth, RequireRole(entity.RoleAdmin), authHandler.Users)

	// Customers (protegido)
	customers := api.Group("/customers", requireAuth)
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.OpportunityUC, deps.ActivityUC, deps.InteractionUC)
	customers.Get("/", customerHandler.List)
	customers.Get("/stats", customerHandler.Stats)
	customers.Post("/", customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)
	customers.Get("/:id/summary", customerHandler.Summary)
	customers.Get("/:id/opportunities", customerHandler.Opportunities)
	customers.Get("/:id/activities", customerHandler.Activities)
	customers.Get("/:id/interactions", customerHandler.Interactions)

	// Opportunities (protegido)
	opportunities := api.Group("/opportunities", requireAuth)
	opportunityHandler := NewOpportunityHandler(deps.OpportunityUC, deps.ActivityUC)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	opportunities.Get("/", opportunityHandler.List)
	opportunities.Get("/stats/pipeline", dashboardHandler.Pipeline)
	opportunities.Get("/stage/:stage", opportunityHandler.ByStage)
	opportunities.Post("/", opportunityHandler.Create)
	opportunities.Get("/:id", opportunityHandler.GetByID)
	opportunities.Put("/:id", opportunityHandler.Update)
	opportunities.Delete("/:id", opportunityHandler.Delete)
	opportunities.Post("/:id/close", opportunityHandler.Close)
	opportunities.Get("/:id/activities", opportunityHandler.Activities)

	// Activities (protegido)
	activities := api.Group("/activities", requireAuth)
	activityHandler := NewActivityHandler(deps.ActivityUC)
	activities.Get("/", activityHandler.List)
	activities.Get("/due/today", activityHandler.DueToday)
	activities.Get("/due/overdue", activityHandler.Overdue)
	activities.Get("/user/:userId", activityHandler.ByUser)
	activities.Post("/", activityHandler.Create)
	activities.Get("/:id", activityHandler.GetByID)
	activities.Put("/:id", activityHandler.Update)
	activities.Delete("/:id", activityHandler.Delete)
	activities.Post("/:id/complete", activityHandler.Complete)
	activities.Post("/:id/cancel", activityHandler.Cancel)

	// Interactions (protegido)
	interactions := api.Group("/interactions", requireAuth)
	interactionHandler := NewInteractionHandler(deps.InteractionUC)
	interactions.Get("/", interactionHandler.List)
	interactions.Get("/stats/summary", interactionHandler.Stats)
	interactions.Get("/customer/:customerId", interactionHandler.ByCustomer)
	interactions.Get("/user/:userId", interactionHandler.ByUser)
	interactions.Get("/recent/:days", interactionHandler.Recent)
	interactions.Post("/", interactionHandler.Create)
	interactions.Get("/:id", interactionHandler.GetByID)
	interactions.Put("/:id", interactionHandler.Update)
	interactions.Delete("/:id", interactionHandler.Delete)
	interactions.Patch("/:id/important", interactionHandler.MarkImportant)
	interactions.Patch("/:id/follow-up", interactionHandler.FollowUp)

	// Dashboard (protegido)
	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.Get("/stats", dashboardHandler.Stats)
	dashboard.Get("/metrics", dashboardHandler.Metrics)
	dashboard.Get("/pipeline", dashboardHandler.Pipeline)
	dashboard.Get("/recent-activity", dashboardHandler.RecentActivity)
	dashboard.Get("/summary", dashboardHandler.Summary)
	dashboard.Get("/report", dashboardHandler.Report)

	// Cualquier otra ruta: 404 con el envelope de error
	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
