package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/middleware"
	"github.com/voyago/voyago/internal/pkg/config"
	"github.com/voyago/voyago/internal/routes"
)

// SetupRouter configures the gin engine with middleware and all routes.
func SetupRouter(pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware())

	routes.Setup(r, pool, cfg, logger)
	return r
}
