package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

func (s *CartRepo) CreateCart(ctx context.Context, cart *model.Cart) error {
	return s.db.conn(ctx).Create(cart).Error
}

// GetCartForCheckout 取得使用者的購物車與所有品項
// 在事務內會同時鎖住購物車那一列, 同一台購物車的結帳因此互斥
// 錯誤:
//   - ErrCartNotFound: 使用者不存在或沒有購物車
//   - ErrLockTimeout: 購物車正在被其他事務使用
func (s *CartRepo) GetCartForCheckout(ctx context.Context, userProfileID uint) (*model.Cart, error) {
	conn := s.db.conn(ctx)

	var profile model.UserProfile
	if err := conn.First(&profile, "user_profile_id = ?", userProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userProfileID, ErrCartNotFound)
		}
		return nil, err
	}
	if !profile.HasCart() {
		return nil, fmt.Errorf("user %d: %w", userProfileID, ErrCartNotFound)
	}

	query := conn
	if _, inTx := txFromContext(ctx); inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart model.Cart
	if err := query.First(&cart, "cart_id = ?", *profile.CartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userProfileID, ErrCartNotFound)
		}
		return nil, translateError(err)
	}

	if err := conn.Where("cart_id = ?", cart.CartID).Order("cart_item_id ASC").Find(&cart.CartItems).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCartItems 硬刪除購物車所有品項
func (s *CartRepo) DeleteCartItems(ctx context.Context, cartID uint) error {
	return s.db.conn(ctx).Unscoped().Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}
