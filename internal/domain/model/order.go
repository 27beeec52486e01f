package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order 訂單是收據, 建立後品項不再異動, 也不會被刪除
type Order struct {
	OrderID       string          `gorm:"primaryKey;type:varchar(36)" json:"order_id"`
	UserProfileID uint            `gorm:"not null;index" json:"user_profile_id"`
	CreatedAt     time.Time       `gorm:"<-:create;not null" json:"created_at"`
	Status        OrderStatus     `gorm:"not null;type:varchar(20);default:'NEW'" json:"status"`
	TotalPrice    decimal.Decimal `gorm:"<-:create;not null;type:decimal(12,2)" json:"total_price"`
	OrderItems    []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"order_items"`
}

// OrderItem 下單當下商品資料的複本, 不關聯 Product
// ProductID 僅作為追蹤用途
type OrderItem struct {
	OrderItemID  uint            `gorm:"primaryKey" json:"order_item_id"`
	OrderID      string          `gorm:"<-:create;not null;index;type:varchar(36)" json:"order_id"`
	ProductID    uint            `gorm:"<-:create;not null" json:"product_id"`
	ProductName  string          `gorm:"<-:create;not null;type:varchar(100)" json:"product_name"`
	ProductBrand string          `gorm:"<-:create;not null;type:varchar(100)" json:"product_brand"`
	UnitPrice    decimal.Decimal `gorm:"<-:create;not null;type:decimal(10,2)" json:"unit_price"`
	Quantity     int             `gorm:"<-:create;not null;check:quantity > 0" json:"quantity"`
	TotalPrice   decimal.Decimal `gorm:"<-:create;not null;type:decimal(12,2)" json:"total_price"`
}

// CalculateTotal 訂單總額為所有品項小計加總
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.OrderItems {
		total = total.Add(item.TotalPrice)
	}
	return RoundPrice(total)
}
