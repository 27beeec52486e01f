package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

// SortedProductIDs 去除重複後依 product_id 遞增排序
// 所有結帳都以相同順序上鎖, 互相重疊的購物車不會形成循環等待
func SortedProductIDs(items []model.CartItem) []uint {
	seen := make(map[uint]struct{}, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LockOrderingCoordinator 以單次呼叫鎖住購物車涉及的所有商品
type LockOrderingCoordinator struct {
	products db.IProductRepository
}

func NewLockOrderingCoordinator(products db.IProductRepository) *LockOrderingCoordinator {
	return &LockOrderingCoordinator{products: products}
}

// LockProducts 回傳上鎖後讀到的商品, key 為 product_id
// 錯誤:
//   - ErrNoActiveTransaction: 不在事務內
//   - ErrLockTimeout: 等鎖逾時
//   - ErrProductNotFound: 購物車內有已不存在的商品
func (c *LockOrderingCoordinator) LockProducts(ctx context.Context, items []model.CartItem) (map[uint]*model.Product, error) {
	ids := SortedProductIDs(items)

	products, err := c.products.LockProductsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	locked := make(map[uint]*model.Product, len(products))
	for i := range products {
		locked[products[i].ProductID] = &products[i]
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
	}
	return locked, nil
}
