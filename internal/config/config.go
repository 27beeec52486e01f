package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/constants"
	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 設置viper watch 與 onConfigChange
read : 一般讀取, 需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config    *Config
	mu        sync.RWMutex
	listeners []func(*Config)
}

type Config struct {
	Env             constants.ENV         `mapstructure:"ENV"`
	ServerPort      string                `mapstructure:"SERVER_PORT"`
	StoreDriver     constants.StoreDriver `mapstructure:"STORE_DRIVER"`
	SeedDemoData    bool                  `mapstructure:"SEED_DEMO_DATA"`
	DbName          string                `mapstructure:"POSTGRES_DB"`
	DbHost          string                `mapstructure:"POSTGRES_HOST"`
	DbPort          string                `mapstructure:"POSTGRES_PORT"`
	DbUser          string                `mapstructure:"POSTGRES_USER"`
	DbPas           string                `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr       string                `mapstructure:"REDIS_ADDR"`
	RedisPassword   string                `mapstructure:"REDIS_PASSWORD"`
	StockCacheTTL   time.Duration         `mapstructure:"STOCK_CACHE_TTL"`
	KafkaBrokers    string                `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string                `mapstructure:"KAFKA_ORDER_TOPIC"`
	LockTimeout     time.Duration         `mapstructure:"LOCK_TIMEOUT"`
	CheckoutBurst   int                   `mapstructure:"CHECKOUT_BURST"`
	CheckoutRatePS  int                   `mapstructure:"CHECKOUT_RATE_PS"`
}

// KafkaBrokerList KAFKA_BROKERS 以逗號分隔, 空字串代表不發送事件
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

var defaults = map[string]any{
	"ENV":               string(constants.Dev),
	"SERVER_PORT":       "8080",
	"STORE_DRIVER":      string(constants.StorePostgres),
	"SEED_DEMO_DATA":    false,
	"POSTGRES_DB":       "shop",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "",
	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"STOCK_CACHE_TTL":   "10m",
	"KAFKA_BROKERS":     "",
	"KAFKA_ORDER_TOPIC": "shop.orders",
	"LOCK_TIMEOUT":      "5s",
	"CHECKOUT_BURST":    100,
	"CHECKOUT_RATE_PS":  50,
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	muonce.Do(func() {
		config_singleton = &ConfigSingleTon{}
		path := configFilePath()

		cf, err := LoadConfig(path)
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		config_singleton.Config = cf

		if path == "" {
			return
		}
		viper.SetConfigFile(path)
		viper.OnConfigChange(func(e fsnotify.Event) {
			cf, err := LoadConfig(path)
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			applyReload(cf)
		})
		viper.WatchConfig()
	})
}

// OnReload 設定檔變更且驗證通過後呼叫 fn, 只有註冊過的元件會拿到新值
// 連線類設定 (db/redis/kafka/port) 需要重啟才會生效
func OnReload(fn func(*Config)) {
	initConfig()
	config_singleton.mu.Lock()
	defer config_singleton.mu.Unlock()
	config_singleton.listeners = append(config_singleton.listeners, fn)
}

func applyReload(cf *Config) {
	config_singleton.mu.Lock()
	config_singleton.Config = cf
	listeners := append([]func(*Config){}, config_singleton.listeners...)
	config_singleton.mu.Unlock()

	for _, fn := range listeners {
		fn(cf)
	}
}

// configFilePath CONFIG_FILE 優先, 其次是工作目錄下的 .env, 都沒有就只讀環境變數
func configFilePath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}
	return ""
}

/*
單純回傳錯誤  由外部決定要不要Fatal, 畢竟有可能有替代方案
環境變數會覆蓋設定檔
*/
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	if err := cf.validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case constants.StorePostgres, constants.StoreMemory:
	default:
		return errors.New("STORE_DRIVER must be postgres or memory")
	}
	if c.LockTimeout <= 0 {
		return errors.New("LOCK_TIMEOUT must be positive")
	}
	if c.CheckoutBurst <= 0 || c.CheckoutRatePS <= 0 {
		return errors.New("CHECKOUT_BURST and CHECKOUT_RATE_PS must be positive")
	}
	return nil
}
