package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 軟刪除只靠 DeletedAt, 目前沒有任何流程刪除商品/訂單/使用者
type BaseModel struct {
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
