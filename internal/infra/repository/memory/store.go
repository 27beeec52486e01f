package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

const defaultLockTimeout = 5 * time.Second

var ErrDuplicateOrder = errors.New("order already exists")

// Store 記憶體版本的庫存/購物車/訂單儲存, 行為與 postgres 版本一致
// 本地開發與併發測試使用
type Store struct {
	mu              sync.RWMutex
	products        map[uint]model.Product
	carts           map[uint]model.Cart
	profiles        map[uint]model.UserProfile
	orders          map[string]model.Order
	nextCartItemID  uint
	nextOrderItemID uint

	locks       *lockTable
	lockTimeout atomic.Int64 // nanoseconds
}

type Option func(*Store)

// WithLockTimeout 等待排他鎖的上限
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.SetLockTimeout(timeout)
	}
}

// SetLockTimeout 只影響之後的鎖等待, 非正數忽略
func (s *Store) SetLockTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.lockTimeout.Store(int64(timeout))
	}
}

func (s *Store) LockTimeout() time.Duration {
	return time.Duration(s.lockTimeout.Load())
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		products: make(map[uint]model.Product),
		carts:    make(map[uint]model.Cart),
		profiles: make(map[uint]model.UserProfile),
		orders:   make(map[string]model.Order),
		locks:    newLockTable(),
	}
	s.lockTimeout.Store(int64(defaultLockTimeout))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) InitMigrate() error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// WithinTx 已在事務內時沿用外層事務
// fn 結束後不論成功與否都會釋放所有鎖, 只有成功時才套用暫存的寫入
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx := newMemTx()
	defer s.releaseAll(tx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *Store) releaseAll(tx *memTx) {
	for i := len(tx.order) - 1; i >= 0; i-- {
		s.locks.release(tx.order[i])
	}
	tx.order = nil
	tx.held = make(map[string]struct{})
}

func (s *Store) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, qty := range tx.quantities {
		p := s.products[id]
		p.AvailableQuantity = qty
		p.StockVersion++
		p.UpdatedAt = time.Now()
		s.products[id] = p
	}
	for id, price := range tx.prices {
		p := s.products[id]
		p.Price = price
		p.UpdatedAt = time.Now()
		s.products[id] = p
	}
	for _, order := range tx.orders {
		s.orders[order.OrderID] = order
	}
	for cartID := range tx.clearedCarts {
		cart := s.carts[cartID]
		cart.CartItems = nil
		s.carts[cartID] = cart
	}
	for profileID := range tx.detached {
		profile := s.profiles[profileID]
		profile.CartID = nil
		s.profiles[profileID] = profile
	}
}

// lock 依呼叫順序取得排他鎖, 已持有的 key 直接略過
func (s *Store) lock(ctx context.Context, tx *memTx, key string) error {
	if _, ok := tx.held[key]; ok {
		return nil
	}
	if err := s.locks.acquire(ctx, key, s.LockTimeout()); err != nil {
		return err
	}
	tx.held[key] = struct{}{}
	tx.order = append(tx.order, key)
	return nil
}

// product 讀取商品, 事務內會看到自己尚未 commit 的寫入
func (s *Store) product(ctx context.Context, id uint) (model.Product, bool) {
	s.mu.RLock()
	p, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return p, false
	}
	if tx, inTx := txFromContext(ctx); inTx {
		if qty, ok := tx.quantities[id]; ok {
			p.AvailableQuantity = qty
			p.StockVersion++
		}
		if price, ok := tx.prices[id]; ok {
			p.Price = price
		}
	}
	return p, true
}

func (s *Store) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	p, ok := s.product(ctx, productID)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, db.ErrProductNotFound)
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, productIDs []uint) ([]model.Product, error) {
	products := make([]model.Product, 0, len(productIDs))
	seen := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := s.product(ctx, id); ok {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ProductID < products[j].ProductID })
	return products, nil
}

// LockProductsForUpdate 依傳入順序逐一取得商品鎖, 回傳結果依 product_id 遞增排序
// 不存在的商品不會出現在結果中
func (s *Store) LockProductsForUpdate(ctx context.Context, productIDs []uint) ([]model.Product, error) {
	tx, ok := txFromContext(ctx)
	if !ok {
		return nil, db.ErrNoActiveTransaction
	}
	for _, id := range productIDs {
		if err := s.lock(ctx, tx, productKey(id)); err != nil {
			return nil, err
		}
	}
	return s.GetProductsByIDs(ctx, productIDs)
}

func (s *Store) UpdateAvailableQuantity(ctx context.Context, productID uint, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("product %d: %w", productID, model.ErrNegativeQuantity)
	}
	return s.WithinTx(ctx, func(ctx context.Context) error {
		tx, _ := txFromContext(ctx)
		if err := s.lock(ctx, tx, productKey(productID)); err != nil {
			return err
		}
		if _, ok := s.product(ctx, productID); !ok {
			return fmt.Errorf("product %d: %w", productID, db.ErrProductNotFound)
		}
		tx.quantities[productID] = quantity
		return nil
	})
}

func (s *Store) UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) error {
	return s.WithinTx(ctx, func(ctx context.Context) error {
		tx, _ := txFromContext(ctx)
		if err := s.lock(ctx, tx, productKey(productID)); err != nil {
			return err
		}
		if _, ok := s.product(ctx, productID); !ok {
			return fmt.Errorf("product %d: %w", productID, db.ErrProductNotFound)
		}
		tx.prices[productID] = model.RoundPrice(price)
		return nil
	})
}

// GetCartForCheckout 事務內會先鎖住購物車
func (s *Store) GetCartForCheckout(ctx context.Context, userProfileID uint) (*model.Cart, error) {
	profile, ok := s.profile(ctx, userProfileID)
	if !ok || !profile.HasCart() {
		return nil, fmt.Errorf("user %d: %w", userProfileID, db.ErrCartNotFound)
	}
	cartID := *profile.CartID

	tx, inTx := txFromContext(ctx)
	if inTx {
		if err := s.lock(ctx, tx, cartKey(cartID)); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	stored, ok := s.carts[cartID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userProfileID, db.ErrCartNotFound)
	}

	cart := model.Cart{CartID: stored.CartID, BaseModel: stored.BaseModel}
	cleared := false
	if inTx {
		_, cleared = tx.clearedCarts[cartID]
	}
	if !cleared {
		cart.CartItems = append([]model.CartItem(nil), stored.CartItems...)
	}
	sort.Slice(cart.CartItems, func(i, j int) bool { return cart.CartItems[i].CartItemID < cart.CartItems[j].CartItemID })
	return &cart, nil
}

func (s *Store) DeleteCartItems(ctx context.Context, cartID uint) error {
	return s.WithinTx(ctx, func(ctx context.Context) error {
		tx, _ := txFromContext(ctx)
		if err := s.lock(ctx, tx, cartKey(cartID)); err != nil {
			return err
		}
		tx.clearedCarts[cartID] = struct{}{}
		return nil
	})
}

func (s *Store) profile(ctx context.Context, id uint) (model.UserProfile, bool) {
	s.mu.RLock()
	p, ok := s.profiles[id]
	s.mu.RUnlock()
	if !ok {
		return p, false
	}
	if tx, inTx := txFromContext(ctx); inTx {
		if _, detached := tx.detached[id]; detached {
			p.CartID = nil
		}
	}
	if p.CartID != nil {
		cartID := *p.CartID
		p.CartID = &cartID
	}
	return p, true
}

func (s *Store) GetUserProfileByID(ctx context.Context, id uint) (*model.UserProfile, error) {
	p, ok := s.profile(ctx, id)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, db.ErrUserProfileNotFound)
	}
	return &p, nil
}

func (s *Store) DetachCart(ctx context.Context, userProfileID uint) error {
	return s.WithinTx(ctx, func(ctx context.Context) error {
		tx, _ := txFromContext(ctx)
		if _, ok := s.profile(ctx, userProfileID); !ok {
			return fmt.Errorf("user %d: %w", userProfileID, db.ErrUserProfileNotFound)
		}
		tx.detached[userProfileID] = struct{}{}
		return nil
	})
}

// CreateOrder 與 gorm Create 相同, 會回填品項的 id
func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.WithinTx(ctx, func(ctx context.Context) error {
		tx, _ := txFromContext(ctx)

		s.mu.Lock()
		if _, exists := s.orders[order.OrderID]; exists {
			s.mu.Unlock()
			return fmt.Errorf("order %s: %w", order.OrderID, ErrDuplicateOrder)
		}
		for i := range order.OrderItems {
			s.nextOrderItemID++
			order.OrderItems[i].OrderItemID = s.nextOrderItemID
			order.OrderItems[i].OrderID = order.OrderID
		}
		s.mu.Unlock()

		if order.Status == "" {
			order.Status = model.OrderStatusNew
		}
		tx.orders = append(tx.orders, copyOrder(*order))
		return nil
	})
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	for _, order := range s.visibleOrders(ctx) {
		if order.OrderID == id {
			return &order, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", id, db.ErrOrderNotFound)
}

func (s *Store) GetOrdersByUserProfileID(ctx context.Context, userProfileID uint) ([]model.Order, error) {
	orders := []model.Order{}
	for _, order := range s.visibleOrders(ctx) {
		if order.UserProfileID == userProfileID {
			orders = append(orders, order)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *Store) visibleOrders(ctx context.Context) []model.Order {
	s.mu.RLock()
	orders := make([]model.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, copyOrder(order))
	}
	s.mu.RUnlock()

	if tx, ok := txFromContext(ctx); ok {
		for _, order := range tx.orders {
			orders = append(orders, copyOrder(order))
		}
	}
	return orders
}

func copyOrder(order model.Order) model.Order {
	order.OrderItems = append([]model.OrderItem(nil), order.OrderItems...)
	return order
}

// PutProduct 直接寫入商品, 供初始化資料與測試使用
func (s *Store) PutProduct(p model.Product) error {
	if p.AvailableQuantity < 0 {
		return fmt.Errorf("product %d: %w", p.ProductID, model.ErrNegativeQuantity)
	}
	p.Price = model.RoundPrice(p.Price)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ProductID] = p
	return nil
}

// PutCart 寫入購物車, 未指定 id 的品項會自動編號
func (s *Store) PutCart(cart model.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.CartItem, len(cart.CartItems))
	for i, item := range cart.CartItems {
		if item.CartItemID == 0 {
			s.nextCartItemID++
			item.CartItemID = s.nextCartItemID
		} else if item.CartItemID > s.nextCartItemID {
			s.nextCartItemID = item.CartItemID
		}
		item.CartID = cart.CartID
		items[i] = item
	}
	cart.CartItems = items
	s.carts[cart.CartID] = cart
}

func (s *Store) PutUserProfile(p model.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserProfileID] = p
}

var (
	_ db.ITxManager             = (*Store)(nil)
	_ db.IProductRepository     = (*Store)(nil)
	_ db.ICartRepository        = (*Store)(nil)
	_ db.IOrderRepository       = (*Store)(nil)
	_ db.IUserProfileRepository = (*Store)(nil)
	_ db.UnifiedDB              = (*Store)(nil)
)
