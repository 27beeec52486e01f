package service

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

// repository 層的錯誤直接沿用, 上層只需要認識 service 套件
var (
	ErrCartNotFound        = db.ErrCartNotFound
	ErrProductNotFound     = db.ErrProductNotFound
	ErrOrderNotFound       = db.ErrOrderNotFound
	ErrUserProfileNotFound = db.ErrUserProfileNotFound
	ErrLockTimeout         = db.ErrLockTimeout
	ErrNoActiveTransaction = db.ErrNoActiveTransaction
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("cart item quantity must be positive")
	ErrInvalidPrice      = errors.New("price cannot be negative")
)

// InsufficientStockError 帶出是哪個商品不足, errors.Is(err, ErrInsufficientStock) 成立
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
