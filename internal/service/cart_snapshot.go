package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

// CartSnapshotReader 結帳第一步, 讀取(並鎖住)使用者的購物車
type CartSnapshotReader struct {
	carts db.ICartRepository
}

func NewCartSnapshotReader(carts db.ICartRepository) *CartSnapshotReader {
	return &CartSnapshotReader{carts: carts}
}

func (r *CartSnapshotReader) Load(ctx context.Context, userProfileID uint) (*model.Cart, error) {
	cart, err := r.carts.GetCartForCheckout(ctx, userProfileID)
	if err != nil {
		return nil, err
	}
	for _, item := range cart.CartItems {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("cart item %d: %w", item.CartItemID, ErrInvalidQuantity)
		}
	}
	return cart, nil
}
