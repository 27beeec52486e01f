package service

import (
	"context"

	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

// CartClearer 刪除購物車品項並解除使用者與購物車的關聯
// 購物車本身保留, 只是變成空的
type CartClearer struct {
	carts    db.ICartRepository
	profiles db.IUserProfileRepository
}

func NewCartClearer(carts db.ICartRepository, profiles db.IUserProfileRepository) *CartClearer {
	return &CartClearer{carts: carts, profiles: profiles}
}

func (c *CartClearer) Clear(ctx context.Context, userProfileID uint, cartID uint) error {
	if err := c.carts.DeleteCartItems(ctx, cartID); err != nil {
		return err
	}
	return c.profiles.DetachCart(ctx, userProfileID)
}
