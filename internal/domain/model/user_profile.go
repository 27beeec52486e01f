package model

// UserProfile 使用者資料, 最多擁有一台購物車
// CartID 為 nil 代表目前沒有購物車 (結帳後會被解除關聯)
type UserProfile struct {
	UserProfileID uint    `gorm:"primaryKey" json:"user_profile_id"`
	UserName      string  `gorm:"not null;type:varchar(50)" json:"user_name"`
	CartID        *uint   `gorm:"uniqueIndex" json:"cart_id"`
	Cart          *Cart   `gorm:"foreignKey:CartID;constraint:OnDelete:SET NULL" json:"-"`
	Orders        []Order `gorm:"foreignKey:UserProfileID" json:"-"`
	BaseModel
}

// HasCart 是否仍有關聯的購物車
func (u *UserProfile) HasCart() bool {
	return u.CartID != nil
}
