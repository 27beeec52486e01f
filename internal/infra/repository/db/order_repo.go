package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
)

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單與品項
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.conn(ctx).Create(order).Error
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.conn(ctx).Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_item_id ASC")
	}).First(&order, "order_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
		}
		return nil, err
	}
	return &order, nil
}

// Read - 根據用戶ID查詢訂單
func (s *OrderRepo) GetOrdersByUserProfileID(ctx context.Context, userProfileID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.conn(ctx).Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_item_id ASC")
	}).Where("user_profile_id = ?", userProfileID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}
