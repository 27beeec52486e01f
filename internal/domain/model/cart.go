package model

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	CartItems []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"cart_items"` // 一對多，級聯刪除
	BaseModel
}

// IsEmpty 沒有任何品項的購物車不能結帳
func (c *Cart) IsEmpty() bool {
	return len(c.CartItems) == 0
}

// CartItem 購物車品項
// Quantity 只在加入/修改時對照當下庫存, 真正的檢查在結帳時進行
type CartItem struct {
	CartItemID uint `gorm:"primaryKey" json:"cart_item_id"`
	CartID     uint `gorm:"not null;index" json:"cart_id"`
	ProductID  uint `gorm:"not null;index" json:"product_id"`
	Quantity   int  `gorm:"not null;check:quantity > 0" json:"quantity"`
}
