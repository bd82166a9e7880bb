package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "coin-rewards-backend/internal/common/errors"
	"coin-rewards-backend/internal/common/middleware"
	"coin-rewards-backend/internal/features/wallet/models"
	"coin-rewards-backend/internal/features/wallet/repository"
	"coin-rewards-backend/internal/features/wallet/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWalletService struct {
	profile      *models.Profile
	rewardResult *service.RewardResult
	withdrawals  []*models.WithdrawRequest

	profileErr  error
	rewardErr   error
	withdrawErr error
	resolveErr  error
	listErr     error
}

func (s *stubWalletService) EnsureUser(context.Context, string, string, string) (*models.Profile, error) {
	return s.profile, s.profileErr
}

func (s *stubWalletService) GetProfile(context.Context, string) (*models.Profile, error) {
	return s.profile, s.profileErr
}

func (s *stubWalletService) RewardForAd(context.Context, string) (*service.RewardResult, error) {
	return s.rewardResult, s.rewardErr
}

func (s *stubWalletService) RequestWithdrawal(context.Context, string, string, string, int64) error {
	return s.withdrawErr
}

func (s *stubWalletService) ResolveWithdrawal(context.Context, string, string, string) error {
	return s.resolveErr
}

func (s *stubWalletService) ListPendingWithdrawals(context.Context, string) ([]*models.WithdrawRequest, error) {
	return s.withdrawals, s.listErr
}

// fakeAuth stands in for the token middleware and stamps a fixed user id.
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func setupRouter(svc *stubWalletService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewWalletHandler(svc).RegisterRoutes(router.Group("/api/v1"), fakeAuth("7"))
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWalletHandler_GetMe(t *testing.T) {
	t.Run("returns profile", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			profile: &models.Profile{ID: "7", DisplayName: "John", Balance: 120},
		})

		w := doRequest(router, http.MethodGet, "/api/v1/me", "")
		require.Equal(t, http.StatusOK, w.Code)

		var profile models.Profile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
		assert.Equal(t, int64(120), profile.Balance)
	})

	t.Run("unknown user", func(t *testing.T) {
		router := setupRouter(&stubWalletService{profileErr: repository.ErrUserNotFound})

		w := doRequest(router, http.MethodGet, "/api/v1/me", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestWalletHandler_RewardAd(t *testing.T) {
	t.Run("credits reward", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			rewardResult: &service.RewardResult{Balance: 30},
		})

		w := doRequest(router, http.MethodPost, "/api/v1/reward/ad", "")
		require.Equal(t, http.StatusOK, w.Code)

		var result service.RewardResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, int64(30), result.Balance)
	})

	t.Run("cooldown maps to 429 with seconds left", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			rewardErr: apperrors.NewCooldownError(7),
		})

		w := doRequest(router, http.MethodPost, "/api/v1/reward/ad", "")
		require.Equal(t, http.StatusTooManyRequests, w.Code)

		var body struct {
			Error string `json:"error"`
			Left  int64  `json:"left"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "cooldown", body.Error)
		assert.Equal(t, int64(7), body.Left)
	})
}

func TestWalletHandler_Withdraw(t *testing.T) {
	const validBody = `{"method":"card","account":"4111","amount_coins":2000}`

	t.Run("accepts request", func(t *testing.T) {
		router := setupRouter(&stubWalletService{})

		w := doRequest(router, http.MethodPost, "/api/v1/withdraw", validBody)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects incomplete body", func(t *testing.T) {
		router := setupRouter(&stubWalletService{})

		w := doRequest(router, http.MethodPost, "/api/v1/withdraw", `{"method":"card"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("below minimum names the threshold", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			withdrawErr: &models.BelowMinimumError{MinCoins: 2000},
		})

		w := doRequest(router, http.MethodPost, "/api/v1/withdraw", validBody)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "2000")
	})

	t.Run("insufficient balance", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			withdrawErr: repository.ErrInsufficientFunds,
		})

		w := doRequest(router, http.MethodPost, "/api/v1/withdraw", validBody)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient balance")
	})
}

func TestWalletHandler_ResolveWithdraw(t *testing.T) {
	t.Run("forbidden without admin rights", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			resolveErr: apperrors.NewForbiddenError("admin access required"),
		})

		w := doRequest(router, http.MethodPost, "/api/v1/admin/withdraw/req-1/approve", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("bad action", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			resolveErr: apperrors.New(apperrors.ErrCodeBadAction, "action must be approve or reject"),
		})

		w := doRequest(router, http.MethodPost, "/api/v1/admin/withdraw/req-1/freeze?admin=1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("already resolved", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			resolveErr: repository.ErrAlreadyResolved,
		})

		w := doRequest(router, http.MethodPost, "/api/v1/admin/withdraw/req-1/approve?admin=1", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		router := setupRouter(&stubWalletService{})

		w := doRequest(router, http.MethodPost, "/api/v1/admin/withdraw/req-1/approve?admin=1", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestWalletHandler_ListWithdrawals(t *testing.T) {
	t.Run("lists pending requests", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			withdrawals: []*models.WithdrawRequest{
				{ID: "req-1", UserID: "7", AmountCoins: 2000, Status: models.WithdrawStatusPending},
			},
		})

		w := doRequest(router, http.MethodGet, "/api/v1/admin/withdrawals?admin=1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "req-1")
	})

	t.Run("forbidden without admin rights", func(t *testing.T) {
		router := setupRouter(&stubWalletService{
			listErr: apperrors.NewForbiddenError("admin access required"),
		})

		w := doRequest(router, http.MethodGet, "/api/v1/admin/withdrawals", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
