package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

const defaultStockTTL = 10 * time.Minute

/*	redis 只是庫存的讀取快取, 資料庫才是真相來源
	結構:
	product:{id}:stock {
		stock: 100,
		version: 12,
	}
	version 對應 products.stock_version, 只接受比目前快取更新的版本*/

/*
使用redis lua script 來實現原子性, 每個 key 各自判斷
1. 如果key不存在或沒有version, 直接設置
2. 如果新version大於目前version, 更新並重設TTL
3. 否則略過, 避免晚到的舊資料蓋掉新資料
回傳實際寫入的 key 數量
*/
const compareAndSetStockScript = `
local ttl = ARGV[1]
local applied = 0
for i, key in ipairs(KEYS) do
    local stock = ARGV[i * 2]
    local version = ARGV[i * 2 + 1]

    local current = redis.call('HGET', key, 'version')
    if (not current) or tonumber(version) > tonumber(current) then
        redis.call('HSET', key, 'stock', stock, 'version', version)
        redis.call('PEXPIRE', key, ttl)
        applied = applied + 1
    end
end
return applied
`

type ProductStockRedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductStockRedisRepo(client *redis.Client, ttl time.Duration) *ProductStockRedisRepo {
	if ttl <= 0 {
		ttl = defaultStockTTL
	}
	return &ProductStockRedisRepo{client: client, ttl: ttl}
}

func generateProductStockKey(productID uint) string {
	return fmt.Sprintf("product:%d:stock", productID)
}

// SetProductStocks 一次寫入多個商品庫存, 只會根據 StockVersion 判斷是否要更新
func (s *ProductStockRedisRepo) SetProductStocks(ctx context.Context, products ...model.Product) error {
	if len(products) == 0 {
		return nil
	}

	keys := make([]string, 0, len(products))
	args := make([]interface{}, 0, len(products)*2+1)
	args = append(args, s.ttl.Milliseconds())
	for _, p := range products {
		keys = append(keys, generateProductStockKey(p.ProductID))
		args = append(args, p.AvailableQuantity, p.StockVersion)
	}

	result, err := s.client.Eval(ctx, compareAndSetStockScript, keys, args...).Result()
	if err != nil {
		return fmt.Errorf("set product stocks: %w", err)
	}
	if _, ok := result.(int64); !ok {
		return fmt.Errorf("set product stocks: unexpected result type: %T", result)
	}
	return nil
}

// GetProductStock 取得快取的庫存數量, 沒有快取時 found 為 false
func (s *ProductStockRedisRepo) GetProductStock(ctx context.Context, productID uint) (int, bool, error) {
	stock, err := s.client.HGet(ctx, generateProductStockKey(productID), "stock").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}

	stockInt, err := strconv.Atoi(stock)
	if err != nil {
		return 0, false, err
	}
	return stockInt, true, nil
}
