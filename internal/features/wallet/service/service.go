package service

import (
	"context"
	"strconv"
	"time"

	"coin-rewards-backend/internal/common/config"
	apperrors "coin-rewards-backend/internal/common/errors"
	"coin-rewards-backend/internal/common/logger"
	"coin-rewards-backend/internal/features/wallet/cache"
	"coin-rewards-backend/internal/features/wallet/models"
	"coin-rewards-backend/internal/features/wallet/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RewardResult is the state a successful ad reward left behind.
type RewardResult struct {
	Balance  int64     `json:"balance"`
	LastAdAt time.Time `json:"last_ad_at"`
}

type WalletService interface {
	// EnsureUser upserts the user record on successful authentication.
	EnsureUser(ctx context.Context, id, username, displayName string) (*models.Profile, error)

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// RewardForAd credits the configured ad reward, rate-limited by the
	// per-user cooldown. The cooldown decision happens inside the atomic
	// ledger operation, not here.
	RewardForAd(ctx context.Context, userID string) (*RewardResult, error)

	// RequestWithdrawal admits the request against the configured minimum
	// and the current balance, then debits and records it atomically.
	RequestWithdrawal(ctx context.Context, userID, method, account string, amountCoins int64) error

	// ResolveWithdrawal moves a pending request to approved or rejected.
	// Only callers from the admin allow-list may do this; no funds move.
	ResolveWithdrawal(ctx context.Context, requestID, action, callerID string) error

	ListPendingWithdrawals(ctx context.Context, callerID string) ([]*models.WithdrawRequest, error)
}

type walletService struct {
	repo     repository.WalletRepository
	profiles *cache.ProfileCache
	cfg      *config.Config
	log      zerolog.Logger
}

func NewWalletService(repo repository.WalletRepository, profiles *cache.ProfileCache, cfg *config.Config) WalletService {
	return &walletService{
		repo:     repo,
		profiles: profiles,
		cfg:      cfg,
		log:      logger.With("wallet"),
	}
}

func (s *walletService) EnsureUser(ctx context.Context, id, username, displayName string) (*models.Profile, error) {
	user, err := s.repo.Upsert(ctx, &models.User{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, id)
	return user.ToProfile(), nil
}

func (s *walletService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if s.profiles != nil {
		p, err := s.profiles.Get(ctx, userID)
		if err == nil {
			return p, nil
		}
		if !cache.IsMiss(err) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache read failed")
		}
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := user.ToProfile()
	if s.profiles != nil {
		if err := s.profiles.Set(ctx, profile); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache write failed")
		}
	}
	return profile, nil
}

func (s *walletService) RewardForAd(ctx context.Context, userID string) (*RewardResult, error) {
	res, err := s.repo.CreditForAd(ctx, userID, s.cfg.Rewards.AdReward, s.cfg.Cooldown())
	if err != nil {
		if err == repository.ErrCooldownActive {
			return nil, apperrors.NewCooldownError(res.CooldownLeft)
		}
		return nil, err
	}

	s.invalidateProfile(ctx, userID)
	s.log.Info().
		Str("user_id", userID).
		Int64("amount", s.cfg.Rewards.AdReward).
		Int64("balance", res.Balance).
		Msg("ad reward credited")

	return &RewardResult{Balance: res.Balance, LastAdAt: res.LastAdAt}, nil
}

func (s *walletService) RequestWithdrawal(ctx context.Context, userID, method, account string, amountCoins int64) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	// Advisory admission: the ledger repeats the sufficiency check at
	// commit time under a row lock.
	if err := models.AdmitWithdrawal(amountCoins, user.Balance,
		s.cfg.Withdrawals.CoinsPerUnit, s.cfg.Withdrawals.MinUnits); err != nil {
		return err
	}

	req := &models.WithdrawRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Method:      method,
		Account:     account,
		AmountCoins: amountCoins,
	}
	if err := s.repo.DebitForWithdraw(ctx, req); err != nil {
		return err
	}

	s.invalidateProfile(ctx, userID)
	s.log.Info().
		Str("user_id", userID).
		Str("request_id", req.ID).
		Int64("amount_coins", amountCoins).
		Msg("withdraw request created")

	return nil
}

func (s *walletService) ResolveWithdrawal(ctx context.Context, requestID, action, callerID string) error {
	if err := s.requireAdmin(callerID); err != nil {
		return err
	}

	var status models.WithdrawStatus
	switch action {
	case "approve":
		status = models.WithdrawStatusApproved
	case "reject":
		status = models.WithdrawStatusRejected
	default:
		return apperrors.New(apperrors.ErrCodeBadAction, "action must be approve or reject")
	}

	if err := s.repo.ResolveWithdraw(ctx, requestID, status); err != nil {
		return err
	}

	s.log.Info().
		Str("request_id", requestID).
		Str("status", string(status)).
		Str("admin_id", callerID).
		Msg("withdraw request resolved")

	return nil
}

func (s *walletService) ListPendingWithdrawals(ctx context.Context, callerID string) ([]*models.WithdrawRequest, error) {
	if err := s.requireAdmin(callerID); err != nil {
		return nil, err
	}
	return s.repo.ListWithdrawals(ctx, models.WithdrawStatusPending)
}

// requireAdmin checks the caller-supplied identity against the configured
// allow-list. The identity claim itself is not a verified credential.
func (s *walletService) requireAdmin(callerID string) error {
	id, err := strconv.ParseInt(callerID, 10, 64)
	if err != nil || !s.cfg.IsAdmin(id) {
		return apperrors.NewForbiddenError("admin access required")
	}
	return nil
}

func (s *walletService) invalidateProfile(ctx context.Context, userID string) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache invalidation failed")
	}
}
