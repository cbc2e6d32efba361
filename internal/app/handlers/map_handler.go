package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/geo"
	"github.com/voyago/voyago/internal/app/domain/mapview"
	"github.com/voyago/voyago/internal/app/models"
	"github.com/voyago/voyago/internal/app/observability/metrics"
)

// MapCredentialSource resolves the map provider key for a user.
type MapCredentialSource interface {
	MapCredentials(ctx context.Context, userID uuid.UUID) (key, securityCode string, err error)
}

// MapHandler serves route planning and the map bootstrap config.
type MapHandler struct {
	logger *zap.Logger
	routes *geo.RoutePlanner
	creds  MapCredentialSource
}

func NewMapHandler(routes *geo.RoutePlanner, creds MapCredentialSource, logger *zap.Logger) *MapHandler {
	return &MapHandler{logger: logger, routes: routes, creds: creds}
}

type routePlanRequest struct {
	Points []models.RoutePoint `json:"points" binding:"required"`
}

// PlanRoute turns an ordered stop list into driving segments.
func (h *MapHandler) PlanRoute(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req routePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "points are required"})
		return
	}

	key, _, err := h.creds.MapCredentials(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	plan, err := h.routes.Plan(c.Request.Context(), key, req.Points)
	if err != nil {
		metrics.RoutePlansTotal.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}

	if plan.Fallback {
		metrics.RoutePlansTotal.WithLabelValues("fallback").Inc()
	} else {
		metrics.RoutePlansTotal.WithLabelValues("ok").Inc()
	}
	c.JSON(http.StatusOK, plan)
}

// Config hands the SPA its map key and security code.
func (h *MapHandler) Config(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	key, securityCode, err := h.creds.MapCredentials(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key":           key,
		"security_code": securityCode,
	})
}

// NavigationURL builds a deep link into the map provider's turn-by-turn
// navigation for one stop.
func (h *MapHandler) NavigationURL(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("longitude"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	coord := models.Coordinate{Latitude: lat, Longitude: lng}
	if !coord.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": mapview.NavigationURL(coord, c.Query("name")),
	})
}
