// Package handlers is the JSON surface over the domain services.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/middleware"
	"github.com/voyago/voyago/internal/app/models"
)

// respondError maps domain sentinel errors onto HTTP statuses. The wrapped
// message is user-facing by construction; provider details never reach here.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrInsufficientPoints):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrNotConfigured):
		status = http.StatusPreconditionFailed
	case errors.Is(err, models.ErrNoSpeech),
		errors.Is(err, models.ErrMalformedPlan),
		errors.Is(err, models.ErrParseRetry):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrRecognition),
		errors.Is(err, models.ErrTransport),
		errors.Is(err, models.ErrRoutingFailed),
		errors.Is(err, models.ErrGeocodingFailed):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// requireUser pulls the authenticated user or aborts with 401.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

// planIDParam parses the :id path segment.
func planIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return uuid.Nil, false
	}
	return id, true
}

func logFields(c *gin.Context) []zap.Field {
	return []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
}
