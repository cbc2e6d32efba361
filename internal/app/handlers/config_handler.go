package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/apiconfig"
	"github.com/voyago/voyago/internal/app/models"
)

// ConfigHandler manages per-user provider credentials.
type ConfigHandler struct {
	logger  *zap.Logger
	configs apiconfig.Service
}

func NewConfigHandler(configs apiconfig.Service, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{logger: logger, configs: configs}
}

type upsertConfigRequest struct {
	APIKey       string `json:"api_key"`
	BaseURL      string `json:"base_url"`
	Model        string `json:"model"`
	AppID        string `json:"app_id"`
	APISecret    string `json:"api_secret"`
	SecurityCode string `json:"security_code"`
}

// Upsert stores credentials for one service type. The response never echoes
// secrets back.
func (h *ConfigHandler) Upsert(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req upsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}

	status, err := h.configs.Upsert(c.Request.Context(), userID, models.APIConfig{
		ServiceType:  models.ServiceType(c.Param("serviceType")),
		APIKey:       req.APIKey,
		BaseURL:      req.BaseURL,
		Model:        req.Model,
		AppID:        req.AppID,
		APISecret:    req.APISecret,
		SecurityCode: req.SecurityCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Status reports configured-or-not for every service type.
func (h *ConfigHandler) Status(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	statuses, err := h.configs.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": statuses})
}

func (h *ConfigHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	err := h.configs.Delete(c.Request.Context(), userID, models.ServiceType(c.Param("serviceType")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
