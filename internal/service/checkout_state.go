package service

import (
	"time"

	"github.com/rs/zerolog"
)

type CheckoutState string

const (
	StateStarted           CheckoutState = "STARTED"
	StateCartLoaded        CheckoutState = "CART_LOADED"
	StateProductsLocked    CheckoutState = "PRODUCTS_LOCKED"
	StateStockReconciled   CheckoutState = "STOCK_RECONCILED"
	StateOrderMaterialized CheckoutState = "ORDER_MATERIALIZED"
	StateCartCleared       CheckoutState = "CART_CLEARED"
	StateAborted           CheckoutState = "ABORTED"
)

// CheckoutAttempt 記錄單次結帳走到哪一步
// Aborted 時 FailedAt 為失敗前最後到達的狀態
type CheckoutAttempt struct {
	ID            string
	UserProfileID uint
	State         CheckoutState
	FailedAt      CheckoutState
	Err           error
	StartedAt     time.Time
	FinishedAt    time.Time
}

func newCheckoutAttempt(id string, userProfileID uint, now time.Time) *CheckoutAttempt {
	return &CheckoutAttempt{
		ID:            id,
		UserProfileID: userProfileID,
		State:         StateStarted,
		StartedAt:     now,
	}
}

func (a *CheckoutAttempt) advance(state CheckoutState, logger *zerolog.Logger) {
	a.State = state
	logger.Debug().
		Str("attempt_id", a.ID).
		Uint("user_profile_id", a.UserProfileID).
		Str("state", string(state)).
		Msg("checkout state changed")
}

func (a *CheckoutAttempt) abort(err error, now time.Time, logger *zerolog.Logger) {
	a.FailedAt = a.State
	a.State = StateAborted
	a.Err = err
	a.FinishedAt = now
	logger.Warn().Err(err).
		Str("attempt_id", a.ID).
		Uint("user_profile_id", a.UserProfileID).
		Str("failed_at", string(a.FailedAt)).
		Dur("elapsed", now.Sub(a.StartedAt)).
		Msg("checkout aborted")
}

// Succeeded 整個結帳流程已完成並 commit
func (a *CheckoutAttempt) Succeeded() bool {
	return a.State == StateCartCleared && a.Err == nil
}
