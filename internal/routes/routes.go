// Package routes wires repositories, services and handlers onto the router.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/apiconfig"
	"github.com/voyago/voyago/internal/app/domain/auth"
	"github.com/voyago/voyago/internal/app/domain/expense"
	"github.com/voyago/voyago/internal/app/domain/geo"
	"github.com/voyago/voyago/internal/app/domain/planner"
	"github.com/voyago/voyago/internal/app/domain/trips"
	"github.com/voyago/voyago/internal/app/domain/voice"
	"github.com/voyago/voyago/internal/app/handlers"
	"github.com/voyago/voyago/internal/app/middleware"
	"github.com/voyago/voyago/internal/app/models"
	"github.com/voyago/voyago/internal/pkg/config"
)

// AppHandlers groups the JSON handlers behind the router.
type AppHandlers struct {
	Auth    *handlers.AuthHandler
	Plans   *handlers.PlanHandler
	Voice   *handlers.VoiceHandler
	Expense *handlers.ExpenseHandler
	Map     *handlers.MapHandler
	Config  *handlers.ConfigHandler
}

// NewAppHandlers builds the full dependency graph on top of the pool.
func NewAppHandlers(pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) *AppHandlers {
	configRepo := apiconfig.NewRepositoryImpl(pool, logger)
	configSvc := apiconfig.NewServiceImpl(configRepo, cfg.Providers, logger)
	configSvc.OnInvalidate(func(userID uuid.UUID, st models.ServiceType) {
		logger.Info("Provider configuration invalidated",
			zap.String("userID", userID.String()),
			zap.String("serviceType", string(st)),
		)
	})

	chat := planner.NewChatClient(configSvc, logger)
	amap := geo.NewAMapClient(logger)
	enricher := geo.NewEnricher(amap, logger)
	routePlanner := geo.NewRoutePlanner(amap, logger)

	tripsRepo := trips.NewRepositoryImpl(pool, logger)
	tripsSvc := trips.NewServiceImpl(tripsRepo, logger)
	plannerSvc := planner.NewServiceImpl(chat, enricher, configSvc, tripsRepo, logger)

	expenseRepo := expense.NewRepositoryImpl(pool, logger)
	expenseSvc := expense.NewServiceImpl(expenseRepo, tripsRepo, chat, logger)

	session := voice.NewSession(logger)
	voiceSvc := voice.NewServiceImpl(configSvc, session, logger)

	authRepo := auth.NewRepositoryImpl(pool, logger)

	return &AppHandlers{
		Auth:    handlers.NewAuthHandler(authRepo, cfg.JWT, logger),
		Plans:   handlers.NewPlanHandler(plannerSvc, tripsSvc, logger),
		Voice:   handlers.NewVoiceHandler(voiceSvc, logger),
		Expense: handlers.NewExpenseHandler(expenseSvc, logger),
		Map:     handlers.NewMapHandler(routePlanner, configSvc, logger),
		Config:  handlers.NewConfigHandler(configSvc, logger),
	}
}

// Setup registers every route on the engine.
func Setup(r *gin.Engine, pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) {
	Register(r, NewAppHandlers(pool, cfg, logger), cfg, logger)
}

// Register mounts the handlers. Split from Setup so tests can mount stubbed
// handlers without a pool.
func Register(r *gin.Engine, h *AppHandlers, cfg *config.Config, logger *zap.Logger) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/auth/token", h.Auth.IssueToken)

	protected := api.Group("/")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWT, logger))
	{
		protected.GET("/auth/verify", h.Auth.Verify)

		protected.POST("/plans/generate", h.Plans.Generate)
		protected.POST("/plans/generate/voice", h.Plans.GenerateFromVoice)
		protected.GET("/plans", h.Plans.List)
		protected.GET("/plans/:id", h.Plans.Get)
		protected.PUT("/plans/:id", h.Plans.Update)
		protected.DELETE("/plans/:id", h.Plans.Delete)
		protected.POST("/plans/:id/regenerate", h.Plans.Regenerate)

		protected.PUT("/plans/:id/itinerary", h.Plans.SaveItinerary)
		protected.POST("/plans/:id/itinerary/activities", h.Plans.AddActivity)
		protected.PUT("/plans/:id/itinerary/activities", h.Plans.UpdateActivity)
		protected.DELETE("/plans/:id/itinerary/activities", h.Plans.DeleteActivity)

		protected.POST("/voice/transcribe", h.Voice.Transcribe)

		protected.POST("/expenses/parse", h.Expense.Parse)
		protected.POST("/plans/:id/expenses", h.Expense.Add)
		protected.GET("/plans/:id/expenses", h.Expense.List)
		protected.DELETE("/plans/:id/expenses/:expenseID", h.Expense.Delete)
		protected.GET("/plans/:id/expenses/summary", h.Expense.Summary)
		protected.GET("/plans/:id/expenses/alerts", h.Expense.Alerts)

		protected.POST("/routes/plan", h.Map.PlanRoute)
		protected.GET("/map/config", h.Map.Config)
		protected.GET("/map/navigation", h.Map.NavigationURL)

		protected.GET("/config", h.Config.Status)
		protected.PUT("/config/:serviceType", h.Config.Upsert)
		protected.DELETE("/config/:serviceType", h.Config.Delete)
	}
}
