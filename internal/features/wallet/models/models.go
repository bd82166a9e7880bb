package models

import "time"

// User представляет пользователя мини-аппа с балансом монет
type User struct {
	ID          string     `json:"id" example:"123456789"`
	Username    string     `json:"username,omitempty" example:"@johndoe"`
	DisplayName string     `json:"display_name" example:"John Doe"`
	Balance     int64      `json:"balance" example:"120"`
	LastAdAt    *time.Time `json:"last_ad_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AdEvent — запись о начислении награды за просмотр рекламы.
// Только добавление, никогда не изменяется.
type AdEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// WithdrawStatus представляет статус заявки на вывод
type WithdrawStatus string

const (
	WithdrawStatusPending  WithdrawStatus = "pending"
	WithdrawStatusApproved WithdrawStatus = "approved"
	WithdrawStatusRejected WithdrawStatus = "rejected"
)

// Terminal сообщает, находится ли заявка в конечном статусе.
func (s WithdrawStatus) Terminal() bool {
	return s == WithdrawStatusApproved || s == WithdrawStatusRejected
}

// WithdrawRequest представляет заявку пользователя на вывод монет
type WithdrawRequest struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Method      string         `json:"method" example:"card"`
	Account     string         `json:"account" example:"4276 **** **** 1234"`
	AmountCoins int64          `json:"amount_coins" example:"2000"`
	Status      WithdrawStatus `json:"status" example:"pending"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Profile — публичная информация о пользователе
type Profile struct {
	ID          string     `json:"id" example:"123456789"`
	DisplayName string     `json:"display_name" example:"John Doe"`
	Username    string     `json:"username,omitempty" example:"@johndoe"`
	Balance     int64      `json:"balance" example:"120"`
	LastAdAt    *time.Time `json:"last_ad_at,omitempty"`
}

// ToProfile конвертирует пользователя в публичный профиль
func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		Balance:     u.Balance,
		LastAdAt:    u.LastAdAt,
	}
}
