package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahdiyarhamdi/sheetaro/internal/config"
	"github.com/mahdiyarhamdi/sheetaro/internal/http/handlers"
	"github.com/mahdiyarhamdi/sheetaro/internal/http/middleware"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/service"
)

// SetupRouter wires every endpoint of the API.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	catalogHandler *handlers.CatalogHandler,
	questionnaireHandler *handlers.QuestionnaireHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")
	api.GET("/ws", wsHandler.Handle)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Published catalog is public.
	api.GET("/catalog/categories", catalogHandler.ListCategories)
	api.GET("/catalog/categories/:slug", catalogHandler.GetCategory)
	api.GET("/catalog/plans/:id/questions", middleware.UUIDValidator("id"), catalogHandler.GetQuestions)
	api.POST("/catalog/plans/:id/validate-answer", middleware.UUIDValidator("id"), questionnaireHandler.ValidateAnswer)
	api.POST("/catalog/plans/:id/visible-questions", middleware.UUIDValidator("id"), questionnaireHandler.VisibleQuestions)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	protected.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/media/:kind", mediaHandler.Upload)
		protected.POST("/catalog/templates/:id/preview", middleware.UUIDValidator("id"), mediaHandler.PreviewComposite)

		protected.POST("/orders/quote", orderHandler.Quote)
		protected.POST("/orders", middleware.RequireRole(models.RoleCustomer), orderHandler.Create)
		protected.GET("/orders", middleware.RequireRole(models.RoleCustomer), orderHandler.ListMine)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.Get)
		protected.POST("/orders/:id/transition", middleware.UUIDValidator("id"), orderHandler.Transition)
		protected.PUT("/orders/:id/answers", middleware.UUIDValidator("id"),
			middleware.RequireRole(models.RoleCustomer), orderHandler.ResubmitAnswers)
		protected.GET("/orders/:id/payments", middleware.UUIDValidator("id"), paymentHandler.ListByOrder)

		protected.POST("/payments", middleware.RequireRole(models.RoleCustomer), paymentHandler.Initiate)
		protected.POST("/payments/:id/receipt", middleware.UUIDValidator("id"),
			middleware.RequireRole(models.RoleCustomer), paymentHandler.UploadReceipt)

		protected.GET("/print/queue", middleware.RequireRole(models.RolePrintShop), orderHandler.PrintQueue)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/staff", authHandler.CreateStaff)

		admin.GET("/orders", orderHandler.ListByStatus)
		admin.POST("/orders/:id/assign", middleware.UUIDValidator("id"), orderHandler.AssignStaff)

		admin.GET("/payments", paymentHandler.ReviewQueue)
		admin.POST("/payments/:id/approve", middleware.UUIDValidator("id"), paymentHandler.Approve)
		admin.POST("/payments/:id/reject", middleware.UUIDValidator("id"), paymentHandler.Reject)

		admin.GET("/catalog/versions/:version", catalogHandler.GetVersion)
		admin.POST("/catalog/categories", catalogHandler.CreateCategory)
		admin.PUT("/catalog/categories/:id", middleware.UUIDValidator("id"), catalogHandler.UpdateCategory)
		admin.POST("/catalog/categories/:id/attributes", middleware.UUIDValidator("id"), catalogHandler.AddAttribute)
		admin.POST("/catalog/attributes/:id/options", middleware.UUIDValidator("id"), catalogHandler.AddOption)
		admin.POST("/catalog/categories/:id/plans", middleware.UUIDValidator("id"), catalogHandler.AddPlan)
		admin.POST("/catalog/plans/:id/sections", middleware.UUIDValidator("id"), catalogHandler.AddSection)
		admin.POST("/catalog/plans/:id/templates", middleware.UUIDValidator("id"), catalogHandler.AddTemplate)
		admin.POST("/catalog/sections/:id/questions", middleware.UUIDValidator("id"), catalogHandler.AddQuestion)
		admin.POST("/catalog/questions/:id/options", middleware.UUIDValidator("id"), catalogHandler.AddQuestionOption)
	}

	return r
}
