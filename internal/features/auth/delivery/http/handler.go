package http

import (
	"net/http"

	apperrors "coin-rewards-backend/internal/common/errors"
	"coin-rewards-backend/internal/features/auth/models"
	"coin-rewards-backend/internal/features/auth/service"
	walletservice "coin-rewards-backend/internal/features/wallet/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth   service.AuthService
	wallet walletservice.WalletService
}

func NewAuthHandler(auth service.AuthService, wallet walletservice.WalletService) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		wallet: wallet,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth", h.authenticate)
}

// authenticate verifies the init data payload, upserts the user record and
// returns a session token with the profile.
func (h *AuthHandler) authenticate(c *gin.Context) {
	var input models.AuthRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.InitData == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "init_data is required"})
		return
	}

	identity, token, err := h.auth.Authenticate(input.InitData)
	if err != nil {
		status := http.StatusUnauthorized
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeAuthMalformedUser {
			status = http.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.wallet.EnsureUser(c.Request.Context(), identity.ID, identity.Username, identity.DisplayName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"profile": profile,
	})
}
