package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

// StockReconciler 在持有列鎖的情況下比對並扣減庫存
type StockReconciler struct {
	products db.IProductRepository
}

func NewStockReconciler(products db.IProductRepository) *StockReconciler {
	return &StockReconciler{products: products}
}

// Reconcile 依購物車品項扣減 locked 內的商品庫存, 同一商品多個品項會累計扣減
// 任一品項不足即回傳 *InsufficientStockError, 呼叫端負責 rollback
// 扣減結果依 product_id 遞增順序寫回
func (r *StockReconciler) Reconcile(ctx context.Context, items []model.CartItem, locked map[uint]*model.Product) error {
	touched := make([]uint, 0, len(locked))
	seen := make(map[uint]struct{}, len(locked))

	for _, item := range items {
		product, ok := locked[item.ProductID]
		if !ok {
			return fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("cart item %d: %w", item.CartItemID, ErrInvalidQuantity)
		}
		if item.Quantity > product.AvailableQuantity {
			return &InsufficientStockError{
				ProductID: product.ProductID,
				Available: product.AvailableQuantity,
				Requested: item.Quantity,
			}
		}
		if err := product.DecreaseAvailableQuantity(item.Quantity); err != nil {
			return err
		}
		if _, ok := seen[product.ProductID]; !ok {
			seen[product.ProductID] = struct{}{}
			touched = append(touched, product.ProductID)
		}
	}

	sort.Slice(touched, func(i, j int) bool { return touched[i] < touched[j] })
	for _, id := range touched {
		if err := r.products.UpdateAvailableQuantity(ctx, id, locked[id].AvailableQuantity); err != nil {
			return err
		}
		// 與儲存端的 stock_version + 1 對齊, commit 後的快取刷新帶著新版本
		locked[id].StockVersion++
	}
	return nil
}
