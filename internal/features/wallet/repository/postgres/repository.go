package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coin-rewards-backend/internal/features/wallet/models"
	"coin-rewards-backend/internal/features/wallet/repository"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.WalletRepository {
	return &postgresRepository{db: db}
}

// Upsert создает пользователя при первой аутентификации
// или обновляет его идентификационные поля. Баланс не трогает.
func (r *postgresRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			updated_at = NOW()
		RETURNING id, username, display_name, balance, last_ad_at, created_at, updated_at
	`

	var u models.User
	var lastAdAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Username, user.DisplayName).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.Balance, &lastAdAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if lastAdAt.Valid {
		u.LastAdAt = &lastAdAt.Time
	}

	return &u, nil
}

// GetByID получает пользователя по ID
func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, username, display_name, balance, last_ad_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u models.User
	var lastAdAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.Balance, &lastAdAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if lastAdAt.Valid {
		u.LastAdAt = &lastAdAt.Time
	}

	return &u, nil
}

// CreditForAd начисляет награду за рекламу одной транзакцией:
// блокирует строку пользователя, проверяет кулдаун по свежепрочитанному
// last_ad_at и только потом пишет новый баланс и запись аудита.
// Две конкурирующие награды не могут пройти кулдаун одновременно.
func (r *postgresRepository) CreditForAd(ctx context.Context, userID string, amount int64, cooldown time.Duration) (*repository.CreditResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	var lastAdAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT balance, last_ad_at FROM users WHERE id = $1 FOR UPDATE`,
		userID).Scan(&balance, &lastAdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	now := time.Now().UTC()
	var last *time.Time
	if lastAdAt.Valid {
		last = &lastAdAt.Time
	}

	if ok, left := models.AdmitReward(now, last, cooldown); !ok {
		return &repository.CreditResult{
			Balance:      balance,
			LastAdAt:     lastAdAt.Time,
			CooldownLeft: left,
		}, repository.ErrCooldownActive
	}

	var newBalance int64
	err = tx.QueryRowContext(ctx,
		`UPDATE users SET balance = balance + $2, last_ad_at = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING balance`,
		userID, amount, now).Scan(&newBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ad_events (id, user_id, amount, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), userID, amount, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ad event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit credit: %w", err)
	}

	return &repository.CreditResult{Balance: newBalance, LastAdAt: now}, nil
}

// DebitForWithdraw списывает монеты и создает заявку на вывод одной
// транзакцией. Достаточность баланса проверяется под блокировкой строки:
// две конкурирующие заявки не могут увести баланс в минус.
func (r *postgresRepository) DebitForWithdraw(ctx context.Context, req *models.WithdrawRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE id = $1 FOR UPDATE`,
		req.UserID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return repository.ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user row: %w", err)
	}

	if req.AmountCoins > balance {
		return repository.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET balance = balance - $2, updated_at = NOW() WHERE id = $1`,
		req.UserID, req.AmountCoins)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO withdraw_requests (id, user_id, method, account, amount_coins, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.UserID, req.Method, req.Account, req.AmountCoins, models.WithdrawStatusPending)
	if err != nil {
		return fmt.Errorf("failed to insert withdraw request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit debit: %w", err)
	}

	return nil
}

// ResolveWithdraw переводит заявку из pending в конечный статус.
// Условие status='pending' в UPDATE запрещает перезапись конечного статуса.
func (r *postgresRepository) ResolveWithdraw(ctx context.Context, requestID string, status models.WithdrawStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE withdraw_requests SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		requestID, status, models.WithdrawStatusPending)
	if err != nil {
		return fmt.Errorf("failed to resolve withdraw request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Ни одной строки: либо заявки нет, либо она уже в конечном статусе.
	var existing models.WithdrawStatus
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM withdraw_requests WHERE id = $1`,
		requestID).Scan(&existing)
	if err != nil {
		if err == sql.ErrNoRows {
			return repository.ErrRequestNotFound
		}
		return fmt.Errorf("failed to check withdraw request: %w", err)
	}

	return repository.ErrAlreadyResolved
}

// ListWithdrawals возвращает заявки в заданном статусе, новые первыми
func (r *postgresRepository) ListWithdrawals(ctx context.Context, status models.WithdrawStatus) ([]*models.WithdrawRequest, error) {
	query := `
		SELECT id, user_id, method, account, amount_coins, status, created_at, updated_at
		FROM withdraw_requests
		WHERE status = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraw requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.WithdrawRequest
	for rows.Next() {
		var req models.WithdrawRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.Method, &req.Account,
			&req.AmountCoins, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdraw request: %w", err)
		}
		requests = append(requests, &req)
	}

	return requests, rows.Err()
}
