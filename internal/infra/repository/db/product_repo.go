package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	product.Price = model.RoundPrice(product.Price)
	return s.db.conn(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.db.conn(ctx).First(&product, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
		}
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs 不上鎖的批次查詢, 不存在的商品直接略過
func (s *ProductRepo) GetProductsByIDs(ctx context.Context, productIDs []uint) ([]model.Product, error) {
	var products []model.Product
	if len(productIDs) == 0 {
		return products, nil
	}
	err := s.db.conn(ctx).Where("product_id IN ?", productIDs).Order("product_id ASC").Find(&products).Error
	return products, err
}

// LockProductsForUpdate 以單一查詢對整批商品加上排他列鎖
// 呼叫端負責去重與排序, ORDER BY 讓 postgres 依 product_id 遞增順序取得列鎖
// 錯誤:
//   - ErrNoActiveTransaction: 不在事務內
//   - ErrLockTimeout: 等待其他事務釋放列鎖逾時
func (s *ProductRepo) LockProductsForUpdate(ctx context.Context, productIDs []uint) ([]model.Product, error) {
	tx, err := s.db.txConn(ctx)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if len(productIDs) == 0 {
		return products, nil
	}

	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC").
		Find(&products).Error
	if err != nil {
		return nil, translateError(err)
	}
	return products, nil
}

// UpdateAvailableQuantity 寫回扣減後的庫存, 僅應在持有列鎖時呼叫
func (s *ProductRepo) UpdateAvailableQuantity(ctx context.Context, productID uint, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("product %d: %w", productID, model.ErrNegativeQuantity)
	}

	result := s.db.conn(ctx).Model(&model.Product{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"available_quantity": quantity,
			"stock_version":      gorm.Expr("stock_version + 1"),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	return nil
}

// UpdateProductPrice 修改售價, 不影響已成立的訂單
func (s *ProductRepo) UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) error {
	result := s.db.conn(ctx).Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("price", model.RoundPrice(price))
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	return nil
}
