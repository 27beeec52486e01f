package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoActiveTransaction 鎖定操作只能在事務內呼叫
	ErrNoActiveTransaction = errors.New("no active transaction")
	// ErrLockTimeout 等待列鎖超過 lock_timeout
	ErrLockTimeout = errors.New("lock wait timeout")
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrCartNotFound 使用者不存在或沒有購物車
	ErrCartNotFound = errors.New("cart not found")
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrUserProfileNotFound 使用者不存在
	ErrUserProfileNotFound = errors.New("user profile not found")
)

// postgres lock_not_available
const pgLockNotAvailable = "55P03"

// translateError 將 postgres 的鎖等待逾時轉成 ErrLockTimeout, 其他錯誤原樣回傳
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return fmt.Errorf("%w: %s", ErrLockTimeout, pgErr.Message)
	}
	return err
}
