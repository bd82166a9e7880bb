package repository

import (
	"context"
	"errors"
	"time"

	"coin-rewards-backend/internal/features/wallet/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrRequestNotFound   = errors.New("withdraw request not found")
	ErrCooldownActive    = errors.New("reward cooldown active")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAlreadyResolved   = errors.New("withdraw request already resolved")
)

// CreditResult carries the state written by a successful ad credit,
// or the remaining cooldown when the credit was refused.
type CreditResult struct {
	Balance      int64
	LastAdAt     time.Time
	CooldownLeft int64
}

// WalletRepository is the store-facing capability of the wallet feature.
// Every balance mutation must be atomic at the store level: the service
// layer runs on multiple instances and holds no shared state.
type WalletRepository interface {
	// Upsert creates the user on first authentication or refreshes the
	// identity fields on subsequent ones. Balance is never touched here.
	Upsert(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)

	// CreditForAd re-reads last_ad_at, applies the cooldown check and,
	// if admitted, writes balance+amount and last_ad_at=now plus the
	// ad_events audit row — all inside one transaction. Returns
	// ErrCooldownActive (with CooldownLeft set) when the gate refuses.
	CreditForAd(ctx context.Context, userID string, amount int64, cooldown time.Duration) (*CreditResult, error)

	// DebitForWithdraw re-checks amount <= balance at commit time and,
	// if sufficient, writes balance-amount and inserts the pending
	// withdraw request inside one transaction.
	DebitForWithdraw(ctx context.Context, req *models.WithdrawRequest) error

	// ResolveWithdraw moves a pending request to a terminal status.
	// Terminal requests are never overwritten: ErrAlreadyResolved.
	ResolveWithdraw(ctx context.Context, requestID string, status models.WithdrawStatus) error

	// ListWithdrawals returns requests with the given status, newest first.
	ListWithdrawals(ctx context.Context, status models.WithdrawStatus) ([]*models.WithdrawRequest, error)
}
