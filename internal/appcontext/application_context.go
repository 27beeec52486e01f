package appcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/api/middleware"
	"github.com/RoyceAzure/lab/shop/internal/config"
	"github.com/RoyceAzure/lab/shop/internal/constants"
	"github.com/RoyceAzure/lab/shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/memory"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/shop/internal/logger"
	"github.com/RoyceAzure/lab/shop/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store postgres 與 memory 兩種實作共用
type Store interface {
	db.UnifiedDB
	SetLockTimeout(timeout time.Duration)
	Close() error
}

type ApplicationContext struct {
	Cf              *config.Config
	Logger          *zerolog.Logger
	Store           Store
	RedisClient     *redis.Client
	StockCache      service.StockCache
	OrderProducer   *producer.OrderEventProducer
	CheckoutLimiter *middleware.TokenBucket
	CheckoutService *service.CheckoutService
	OrderService    *service.OrderService
	ProductService  *service.ProductService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	app.Logger = logger.Setup(app.Cf.Env)
	app.Logger.Info().
		Str("env", string(app.Cf.Env)).
		Str("store", string(app.Cf.StoreDriver)).
		Dur("lock_timeout", app.Cf.LockTimeout).
		Msg("start application setup")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"store", app.setUpStore},
		{"stock cache", app.setUpStockCache},
		{"order producer", app.setUpOrderProducer},
		{"services", app.setUpServices},
		{"checkout limiter", app.setUpCheckoutLimiter},
	}
	for _, step := range steps {
		app.Logger.Info().Msgf("Start setup %s", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
		app.Logger.Info().Msgf("Finish setup %s", step.name)
	}
	return nil
}

func (app *ApplicationContext) setUpStore() error {
	switch app.Cf.StoreDriver {
	case constants.StoreMemory:
		store := memory.NewStore(memory.WithLockTimeout(app.Cf.LockTimeout))
		if app.Cf.SeedDemoData {
			if err := SeedDemoData(store); err != nil {
				return err
			}
		}
		app.Store = store
		return nil
	case constants.StorePostgres:
		conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
		if err != nil {
			return err
		}
		store := db.NewUnifiedDB(conn, db.WithLockTimeout(app.Cf.LockTimeout))
		if err := store.InitMigrate(); err != nil {
			return err
		}
		app.Store = store
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", app.Cf.StoreDriver)
	}
}

// setUpStockCache 沒有設定 REDIS_ADDR 時不使用快取
func (app *ApplicationContext) setUpStockCache() error {
	if app.Cf.RedisAddr == "" {
		app.Logger.Warn().Msg("REDIS_ADDR not set, product stock cache disabled")
		return nil
	}
	app.RedisClient = redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := app.RedisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	app.StockCache = redis_repo.NewProductStockRedisRepo(app.RedisClient, app.Cf.StockCacheTTL)
	return nil
}

// setUpOrderProducer 沒有設定 KAFKA_BROKERS 時不發送訂單事件
func (app *ApplicationContext) setUpOrderProducer() error {
	brokers := app.Cf.KafkaBrokerList()
	if len(brokers) == 0 {
		app.Logger.Warn().Msg("KAFKA_BROKERS not set, order events disabled")
		return nil
	}
	app.OrderProducer = producer.NewOrderEventProducer(producer.NewKafkaWriter(brokers, app.Cf.KafkaOrderTopic))
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	opts := []service.CheckoutOption{service.WithLogger(app.Logger)}
	if app.OrderProducer != nil {
		opts = append(opts, service.WithOrderEventPublisher(app.OrderProducer))
	}
	if app.StockCache != nil {
		opts = append(opts, service.WithStockCache(app.StockCache))
	}

	app.CheckoutService = service.NewCheckoutService(app.Store, opts...)
	app.OrderService = service.NewOrderService(app.Store, app.Store)
	app.ProductService = service.NewProductService(app.Store, app.StockCache)
	return nil
}

func (app *ApplicationContext) setUpCheckoutLimiter() error {
	app.CheckoutLimiter = middleware.NewTokenBucket(&middleware.LimiterConfig{
		Capacity:   app.Cf.CheckoutBurst,
		RatePS:     app.Cf.CheckoutRatePS,
		RefillRate: 100 * time.Millisecond,
	})
	return nil
}

// ApplyConfig 設定重新載入時呼叫, 只調整可在執行期變更的項目
// 其他設定 (連線位址, port, store driver) 需要重啟
func (app *ApplicationContext) ApplyConfig(cf *config.Config) {
	if app.Store != nil {
		app.Store.SetLockTimeout(cf.LockTimeout)
	}
	if app.CheckoutLimiter != nil {
		app.CheckoutLimiter.SetLimits(cf.CheckoutBurst, cf.CheckoutRatePS)
	}
	app.Logger.Info().
		Dur("lock_timeout", cf.LockTimeout).
		Int("checkout_burst", cf.CheckoutBurst).
		Int("checkout_rate_ps", cf.CheckoutRatePS).
		Msg("config reloaded")
}

// Shutdown 依建立的反向順序關閉, 個別失敗不中斷流程
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		var errs []error
		if app.CheckoutLimiter != nil {
			app.CheckoutLimiter.Stop()
		}
		if app.OrderProducer != nil {
			if err := app.OrderProducer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close order producer: %w", err))
			}
		}
		if app.RedisClient != nil {
			if err := app.RedisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		if app.Store != nil {
			if err := app.Store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close store: %w", err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		app.Logger.Info().Msg("Application shutdown complete")
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}
