package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/google/uuid"
)

// OrderMaterializer 把購物車品項複製成訂單品項並寫入
type OrderMaterializer struct {
	orders db.IOrderRepository
	now    func() time.Time
	newID  func() string
}

func NewOrderMaterializer(orders db.IOrderRepository, now func() time.Time, newID func() string) *OrderMaterializer {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &OrderMaterializer{orders: orders, now: now, newID: newID}
}

// Materialize 訂單品項保存下單當下的名稱/品牌/單價, 之後商品異動不影響訂單
func (m *OrderMaterializer) Materialize(ctx context.Context, userProfileID uint, items []model.CartItem, products map[uint]*model.Product) (*model.Order, error) {
	order := &model.Order{
		OrderID:       m.newID(),
		UserProfileID: userProfileID,
		CreatedAt:     m.now().UTC(),
		Status:        model.OrderStatusNew,
		OrderItems:    make([]model.OrderItem, 0, len(items)),
	}

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
		}
		unitPrice := model.RoundPrice(product.Price)
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			OrderID:      order.OrderID,
			ProductID:    product.ProductID,
			ProductName:  product.Name,
			ProductBrand: product.Brand,
			UnitPrice:    unitPrice,
			Quantity:     item.Quantity,
			TotalPrice:   model.LineTotal(unitPrice, item.Quantity),
		})
	}
	order.TotalPrice = order.CalculateTotal()

	if err := m.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}
