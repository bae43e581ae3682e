package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/higpup01-design/proofok-simple/config"
	"github.com/higpup01-design/proofok-simple/utils"
)

// AuthController exchanges the configured sender API key for bearer tokens.
type AuthController struct {
	cfg config.AppConfig
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(cfg config.AppConfig) *AuthController {
	return &AuthController{cfg: cfg}
}

// TokenExchange issues a short-lived JWT when the presented API key matches
// the configured bcrypt hash.
func (a *AuthController) TokenExchange(ctx *gin.Context) {
	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	if a.cfg.APIKeyHash == "" {
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "api access not configured")
		return
	}
	if !utils.CheckAPIKey(a.cfg.APIKeyHash, req.APIKey) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid api key")
		return
	}

	ttl := time.Duration(a.cfg.TokenTTLMinutes) * time.Minute
	token, err := utils.GenerateToken(a.cfg.JWTSecret, "sender-api", ttl)
	if err != nil {
		utils.Sugar.Errorf("token generation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_in": int(ttl.Seconds()),
	})
}
