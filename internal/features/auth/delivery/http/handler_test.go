package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "coin-rewards-backend/internal/common/errors"
	"coin-rewards-backend/internal/features/auth/models"
	walletmodels "coin-rewards-backend/internal/features/wallet/models"
	walletservice "coin-rewards-backend/internal/features/wallet/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	identity *models.Identity
	token    string
	err      error
}

func (s *stubAuthService) Authenticate(string) (*models.Identity, string, error) {
	return s.identity, s.token, s.err
}

func (s *stubAuthService) VerifyToken(string) (string, error) {
	return "", nil
}

type stubWalletService struct {
	profile *walletmodels.Profile
	err     error
}

func (s *stubWalletService) EnsureUser(context.Context, string, string, string) (*walletmodels.Profile, error) {
	return s.profile, s.err
}

func (s *stubWalletService) GetProfile(context.Context, string) (*walletmodels.Profile, error) {
	return s.profile, s.err
}

func (s *stubWalletService) RewardForAd(context.Context, string) (*walletservice.RewardResult, error) {
	return nil, nil
}

func (s *stubWalletService) RequestWithdrawal(context.Context, string, string, string, int64) error {
	return nil
}

func (s *stubWalletService) ResolveWithdrawal(context.Context, string, string, string) error {
	return nil
}

func (s *stubWalletService) ListPendingWithdrawals(context.Context, string) ([]*walletmodels.WithdrawRequest, error) {
	return nil, nil
}

func setupRouter(auth *stubAuthService, wallet *stubWalletService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAuthHandler(auth, wallet).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postAuth(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Authenticate(t *testing.T) {
	t.Run("missing init_data", func(t *testing.T) {
		router := setupRouter(&stubAuthService{}, &stubWalletService{})
		w := postAuth(router, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid signature", func(t *testing.T) {
		router := setupRouter(&stubAuthService{
			err: apperrors.New(apperrors.ErrCodeAuthInvalidSignature, "init data signature mismatch"),
		}, &stubWalletService{})

		w := postAuth(router, `{"init_data":"user=x&hash=bad"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed user descriptor", func(t *testing.T) {
		router := setupRouter(&stubAuthService{
			err: apperrors.New(apperrors.ErrCodeAuthMalformedUser, "user descriptor has no id"),
		}, &stubWalletService{})

		w := postAuth(router, `{"init_data":"hash=ok"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success returns token and profile", func(t *testing.T) {
		router := setupRouter(&stubAuthService{
			identity: &models.Identity{ID: "7", DisplayName: "John Doe"},
			token:    "token-123",
		}, &stubWalletService{
			profile: &walletmodels.Profile{ID: "7", DisplayName: "John Doe", Balance: 50},
		})

		w := postAuth(router, `{"init_data":"user=x&hash=good"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Token   string               `json:"token"`
			Profile walletmodels.Profile `json:"profile"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "token-123", body.Token)
		assert.Equal(t, "7", body.Profile.ID)
		assert.Equal(t, int64(50), body.Profile.Balance)
	})
}
