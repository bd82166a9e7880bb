package models

import (
	"errors"
	"fmt"
)

// ErrInsufficientBalance means the requested amount exceeds the balance the
// admission check saw. The ledger re-checks sufficiency at commit time, so
// this is advisory: passing admission does not reserve funds.
var ErrInsufficientBalance = errors.New("insufficient balance")

// BelowMinimumError carries the computed minimum so handlers can surface it.
type BelowMinimumError struct {
	MinCoins int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("withdrawal amount is below the minimum of %d coins", e.MinCoins)
}

// AdmitWithdrawal validates a withdrawal request against the configured
// minimum and the user's balance. The minimum is checked first: it is a
// config-derived bound independent of the specific user.
func AdmitWithdrawal(amountCoins, balance, rate, minUnits int64) error {
	minCoins := rate * minUnits
	if amountCoins < minCoins {
		return &BelowMinimumError{MinCoins: minCoins}
	}
	if amountCoins > balance {
		return ErrInsufficientBalance
	}
	return nil
}
