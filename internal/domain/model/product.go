package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrNegativeQuantity 庫存不可為負數, 任何寫入負數的操作都直接拒絕, 不做修正
	ErrNegativeQuantity = errors.New("available quantity cannot be negative")
)

type Product struct {
	ProductID         uint            `gorm:"primaryKey" json:"product_id"`
	Name              string          `gorm:"not null;type:varchar(100)" json:"name"`
	Brand             string          `gorm:"not null;type:varchar(100)" json:"brand"`
	Price             decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	AvailableQuantity int             `gorm:"not null;type:int;check:available_quantity >= 0" json:"available_quantity"`
	// StockVersion 每次寫回庫存 +1, 快取依此判斷新舊
	StockVersion      int64           `gorm:"not null;default:0" json:"stock_version"`
	BaseModel
}

// SetAvailableQuantity 設定可售數量
func (p *Product) SetAvailableQuantity(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("product %d: %w", p.ProductID, ErrNegativeQuantity)
	}
	p.AvailableQuantity = quantity
	return nil
}

// DecreaseAvailableQuantity 扣減可售數量, 扣到剛好為0是合法的
func (p *Product) DecreaseAvailableQuantity(quantity int) error {
	return p.SetAvailableQuantity(p.AvailableQuantity - quantity)
}

// BeforeSave GORM 的 hook, 寫入前再檢查一次
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.AvailableQuantity < 0 {
		return fmt.Errorf("product %d: %w", p.ProductID, ErrNegativeQuantity)
	}
	return nil
}
