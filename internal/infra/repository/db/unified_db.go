package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ITxManager 事務邊界
type ITxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, productIDs []uint) ([]model.Product, error)
	LockProductsForUpdate(ctx context.Context, productIDs []uint) ([]model.Product, error)
	UpdateAvailableQuantity(ctx context.Context, productID uint, quantity int) error
	UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) error
}

// ICartRepository Cart 相關操作介面
type ICartRepository interface {
	GetCartForCheckout(ctx context.Context, userProfileID uint) (*model.Cart, error)
	DeleteCartItems(ctx context.Context, cartID uint) error
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUserProfileID(ctx context.Context, userProfileID uint) ([]model.Order, error)
}

// IUserProfileRepository UserProfile 相關操作介面
type IUserProfileRepository interface {
	GetUserProfileByID(ctx context.Context, id uint) (*model.UserProfile, error)
	DetachCart(ctx context.Context, userProfileID uint) error
}

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	ITxManager
	IProductRepository
	ICartRepository
	IOrderRepository
	IUserProfileRepository
	InitMigrate() error
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*CartRepo
	*OrderRepo
	*UserProfileRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB, opts ...DbDaoOption) *UnifiedDBImpl {
	dbDao := NewDbDao(db, opts...)
	return &UnifiedDBImpl{
		db:              db,
		dbDao:           dbDao,
		ProductRepo:     NewProductRepo(dbDao),
		CartRepo:        NewCartRepo(dbDao),
		OrderRepo:       NewOrderRepo(dbDao),
		UserProfileRepo: NewUserProfileRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

func (u *UnifiedDBImpl) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.dbDao.WithinTx(ctx, fn)
}

func (u *UnifiedDBImpl) SetLockTimeout(timeout time.Duration) {
	u.dbDao.SetLockTimeout(timeout)
}

// Close 關閉底層連線池
func (u *UnifiedDBImpl) Close() error {
	sqlDB, err := u.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ UnifiedDB              = (*UnifiedDBImpl)(nil)
	_ IProductRepository     = (*ProductRepo)(nil)
	_ ICartRepository        = (*CartRepo)(nil)
	_ IOrderRepository       = (*OrderRepo)(nil)
	_ IUserProfileRepository = (*UserProfileRepo)(nil)
)
