package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/auth"
	"github.com/voyago/voyago/internal/app/middleware"
	"github.com/voyago/voyago/internal/pkg/config"
)

// AuthHandler issues and verifies development tokens for the SPA.
type AuthHandler struct {
	logger *zap.Logger
	users  auth.Repository
	jwtCfg config.JWTConfig
}

func NewAuthHandler(users auth.Repository, jwtCfg config.JWTConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger, users: users, jwtCfg: jwtCfg}
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
}

// IssueToken creates the user on first sight and returns a signed token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	user, err := h.users.EnsureUser(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(h.jwtCfg, user.ID, user.Username)
	if err != nil {
		h.logger.Error("Token signing failed", append(logFields(c), zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": user.ID,
	})
}

// Verify reports the identity behind the presented token.
func (h *AuthHandler) Verify(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"username": c.GetString(middleware.UsernameKey),
	})
}
