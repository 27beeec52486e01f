package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultHookTimeout = 3 * time.Second

// CheckoutStore 結帳需要的所有儲存操作, postgres 與 memory 實作皆滿足
type CheckoutStore interface {
	db.ITxManager
	db.ICartRepository
	db.IProductRepository
	db.IOrderRepository
	db.IUserProfileRepository
}

//go:generate mockgen -destination=mock/mock_hooks.go -package=mock_service github.com/RoyceAzure/lab/shop/internal/service OrderEventPublisher,StockCache

// OrderEventPublisher 訂單成立後發送事件
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *model.Order) error
}

// StockCache 商品庫存快取, 資料庫才是唯一的真實來源
type StockCache interface {
	SetProductStocks(ctx context.Context, products ...model.Product) error
	GetProductStock(ctx context.Context, productID uint) (stock int, found bool, err error)
}

type CheckoutService struct {
	store        CheckoutStore
	reader       *CartSnapshotReader
	coordinator  *LockOrderingCoordinator
	reconciler   *StockReconciler
	materializer *OrderMaterializer
	clearer      *CartClearer

	publisher   OrderEventPublisher
	stockCache  StockCache
	hookTimeout time.Duration

	now    func() time.Time
	newID  func() string
	logger *zerolog.Logger
}

type CheckoutOption func(*CheckoutService)

func WithOrderEventPublisher(publisher OrderEventPublisher) CheckoutOption {
	return func(s *CheckoutService) {
		s.publisher = publisher
	}
}

func WithStockCache(cache StockCache) CheckoutOption {
	return func(s *CheckoutService) {
		s.stockCache = cache
	}
}

func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) CheckoutOption {
	return func(s *CheckoutService) {
		s.newID = newID
	}
}

func WithLogger(logger *zerolog.Logger) CheckoutOption {
	return func(s *CheckoutService) {
		s.logger = logger
	}
}

func WithHookTimeout(timeout time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		s.hookTimeout = timeout
	}
}

func NewCheckoutService(store CheckoutStore, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		store:       store,
		hookTimeout: defaultHookTimeout,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		logger:      &log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reader = NewCartSnapshotReader(store)
	s.coordinator = NewLockOrderingCoordinator(store)
	s.reconciler = NewStockReconciler(store)
	s.materializer = NewOrderMaterializer(store, s.now, s.newID)
	s.clearer = NewCartClearer(store, store)
	return s
}

// Checkout 將使用者的購物車轉成訂單
// 讀購物車 -> 依序鎖商品 -> 扣庫存 -> 建訂單 -> 清空購物車, 全部在同一個事務內
// 任何一步失敗整個事務 rollback, 不會留下部分扣減的庫存或孤兒訂單
//
// 錯誤:
//   - ErrCartNotFound: 使用者不存在或沒有購物車
//   - ErrCartEmpty: 購物車沒有品項, 不會對任何商品上鎖
//   - ErrInsufficientStock (*InsufficientStockError): 任一商品庫存不足
//   - ErrLockTimeout: 等鎖逾時, 可重試
//   - ErrProductNotFound: 購物車內的商品已不存在
func (s *CheckoutService) Checkout(ctx context.Context, userProfileID uint) (*model.Order, error) {
	attempt := newCheckoutAttempt(s.newID(), userProfileID, s.now())
	return s.run(ctx, attempt)
}

func (s *CheckoutService) run(ctx context.Context, attempt *CheckoutAttempt) (*model.Order, error) {
	var (
		order   *model.Order
		touched []model.Product
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.reader.Load(ctx, attempt.UserProfileID)
		if err != nil {
			return err
		}
		attempt.advance(StateCartLoaded, s.logger)

		if cart.IsEmpty() {
			return fmt.Errorf("cart %d: %w", cart.CartID, ErrCartEmpty)
		}

		locked, err := s.coordinator.LockProducts(ctx, cart.CartItems)
		if err != nil {
			return err
		}
		attempt.advance(StateProductsLocked, s.logger)

		if err := s.reconciler.Reconcile(ctx, cart.CartItems, locked); err != nil {
			return err
		}
		attempt.advance(StateStockReconciled, s.logger)

		order, err = s.materializer.Materialize(ctx, attempt.UserProfileID, cart.CartItems, locked)
		if err != nil {
			return err
		}
		attempt.advance(StateOrderMaterialized, s.logger)

		if err := s.clearer.Clear(ctx, attempt.UserProfileID, cart.CartID); err != nil {
			return err
		}
		attempt.advance(StateCartCleared, s.logger)

		touched = snapshotProducts(locked)
		return nil
	})
	if err != nil {
		attempt.abort(err, s.now(), s.logger)
		return nil, err
	}

	attempt.FinishedAt = s.now()
	s.logger.Info().
		Str("attempt_id", attempt.ID).
		Str("order_id", order.OrderID).
		Uint("user_profile_id", attempt.UserProfileID).
		Str("total_price", order.TotalPrice.StringFixed(model.PriceScale)).
		Dur("elapsed", attempt.FinishedAt.Sub(attempt.StartedAt)).
		Msg("checkout committed")

	s.afterCommit(ctx, order, touched)
	return order, nil
}

// afterCommit 事務成功後才執行, 失敗只記 log, 不影響已成立的訂單
func (s *CheckoutService) afterCommit(ctx context.Context, order *model.Order, products []model.Product) {
	if s.publisher == nil && s.stockCache == nil {
		return
	}

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.hookTimeout)
	defer cancel()

	var g errgroup.Group
	if s.publisher != nil {
		g.Go(func() error {
			if err := s.publisher.PublishOrderPlaced(hookCtx, order); err != nil {
				s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("publish order placed event failed")
				return err
			}
			return nil
		})
	}
	if s.stockCache != nil && len(products) > 0 {
		g.Go(func() error {
			if err := s.stockCache.SetProductStocks(hookCtx, products...); err != nil {
				s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("refresh product stock cache failed")
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
}

func snapshotProducts(locked map[uint]*model.Product) []model.Product {
	products := make([]model.Product, 0, len(locked))
	for _, p := range locked {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ProductID < products[j].ProductID })
	return products
}
