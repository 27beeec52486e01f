package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ProductService struct {
	products   db.IProductRepository
	stockCache StockCache
}

// stockCache 可為 nil, 此時一律查資料庫
func NewProductService(products db.IProductRepository, stockCache StockCache) *ProductService {
	return &ProductService{products: products, stockCache: stockCache}
}

// UpdateProductPrice 售價四捨五入到兩位小數, 已成立訂單的單價不受影響
func (p *ProductService) UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) (*model.Product, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("product %d: %w", productID, ErrInvalidPrice)
	}
	if err := p.products.UpdateProductPrice(ctx, productID, price); err != nil {
		return nil, err
	}
	return p.products.GetProductByID(ctx, productID)
}

// GetStock cache-aside, 快取失敗時直接退回資料庫
func (p *ProductService) GetStock(ctx context.Context, productID uint) (int, error) {
	if p.stockCache != nil {
		stock, found, err := p.stockCache.GetProductStock(ctx, productID)
		if err != nil {
			log.Warn().Err(err).Uint("product_id", productID).Msg("read product stock cache failed")
		} else if found {
			return stock, nil
		}
	}

	product, err := p.products.GetProductByID(ctx, productID)
	if err != nil {
		return 0, err
	}

	if p.stockCache != nil {
		if err := p.stockCache.SetProductStocks(ctx, *product); err != nil {
			log.Warn().Err(err).Uint("product_id", productID).Msg("write product stock cache failed")
		}
	}
	return product.AvailableQuantity, nil
}
