package http

import (
	"errors"
	"net/http"

	apperrors "coin-rewards-backend/internal/common/errors"
	"coin-rewards-backend/internal/common/middleware"
	"coin-rewards-backend/internal/features/wallet/models"
	"coin-rewards-backend/internal/features/wallet/repository"
	"coin-rewards-backend/internal/features/wallet/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	service service.WalletService
}

func NewWalletHandler(service service.WalletService) *WalletHandler {
	return &WalletHandler{
		service: service,
	}
}

func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.GET("/me", requireAuth, h.getMe)
	router.POST("/reward/ad", requireAuth, h.rewardAd)
	router.POST("/withdraw", requireAuth, h.withdraw)

	// Админские маршруты. Доступ проверяется в сервисе по параметру admin.
	admin := router.Group("/admin")
	{
		admin.GET("/withdrawals", h.listWithdrawals)
		admin.POST("/withdraw/:id/:action", h.resolveWithdraw)
	}
}

func (h *WalletHandler) getMe(c *gin.Context) {
	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *WalletHandler) rewardAd(c *gin.Context) {
	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.service.RewardForAd(c.Request.Context(), userID)
	if err != nil {
		if appErr, isApp := apperrors.AsAppError(err); isApp && appErr.Code == apperrors.ErrCodeCooldown {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "cooldown",
				"left":  appErr.Details["left"],
			})
			return
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type withdrawInput struct {
	Method      string `json:"method"`
	Account     string `json:"account"`
	AmountCoins int64  `json:"amount_coins"`
}

func (h *WalletHandler) withdraw(c *gin.Context) {
	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input withdrawInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if input.Method == "" || input.Account == "" || input.AmountCoins <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "method, account and amount_coins are required"})
		return
	}

	err := h.service.RequestWithdrawal(c.Request.Context(), userID, input.Method, input.Account, input.AmountCoins)
	if err != nil {
		var belowMin *models.BelowMinimumError
		switch {
		case errors.As(err, &belowMin):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": belowMin.Error()})
		case errors.Is(err, models.ErrInsufficientBalance), errors.Is(err, repository.ErrInsufficientFunds):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, repository.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WalletHandler) resolveWithdraw(c *gin.Context) {
	requestID := c.Param("id")
	action := c.Param("action")
	callerID := c.Query("admin")

	err := h.service.ResolveWithdrawal(c.Request.Context(), requestID, action, callerID)
	if err != nil {
		if appErr, isApp := apperrors.AsAppError(err); isApp {
			switch appErr.Code {
			case apperrors.ErrCodeForbidden:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
				return
			case apperrors.ErrCodeBadAction:
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "action must be approve or reject"})
				return
			}
		}
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "withdraw request not found"})
		case errors.Is(err, repository.ErrAlreadyResolved):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "withdraw request already resolved"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WalletHandler) listWithdrawals(c *gin.Context) {
	requests, err := h.service.ListPendingWithdrawals(c.Request.Context(), c.Query("admin"))
	if err != nil {
		if appErr, isApp := apperrors.AsAppError(err); isApp && appErr.Code == apperrors.ErrCodeForbidden {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": requests})
}
