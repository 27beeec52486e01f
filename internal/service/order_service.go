package service

import (
	"context"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

// OrderService 訂單只讀查詢, 訂單一經建立不再修改
type OrderService struct {
	orders   db.IOrderRepository
	profiles db.IUserProfileRepository
}

func NewOrderService(orders db.IOrderRepository, profiles db.IUserProfileRepository) *OrderService {
	return &OrderService{orders: orders, profiles: profiles}
}

func (o *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return o.orders.GetOrderByID(ctx, orderID)
}

// ListOrdersByUser 依建立時間由新到舊
// 錯誤:
//   - ErrUserProfileNotFound: 使用者不存在
func (o *OrderService) ListOrdersByUser(ctx context.Context, userProfileID uint) ([]model.Order, error) {
	if _, err := o.profiles.GetUserProfileByID(ctx, userProfileID); err != nil {
		return nil, err
	}
	return o.orders.GetOrdersByUserProfileID(ctx, userProfileID)
}
