package db

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
)

type txKey struct{}

type DbDao struct {
	*gorm.DB
	lockTimeout atomic.Int64 // nanoseconds, 設定重新載入時可調整
}

type DbDaoOption func(*DbDao)

// WithLockTimeout 事務內等待列鎖的上限, 0 表示使用資料庫預設值
func WithLockTimeout(timeout time.Duration) DbDaoOption {
	return func(d *DbDao) {
		d.SetLockTimeout(timeout)
	}
}

// SetLockTimeout 只影響之後開始的事務
func (d *DbDao) SetLockTimeout(timeout time.Duration) {
	d.lockTimeout.Store(int64(timeout))
}

func (d *DbDao) LockTimeout() time.Duration {
	return time.Duration(d.lockTimeout.Load())
}

func NewDbDao(conn *gorm.DB, opts ...DbDaoOption) *DbDao {
	d := &DbDao{
		DB: conn,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// 初始化db schema
// 冪等性
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.UserProfile{},
		&model.Order{},
		&model.OrderItem{},
	)
}

// WithinTx 在同一個事務內執行 fn, fn 回傳錯誤時整個事務 rollback
// 事務放在 ctx 內, repo 透過 conn(ctx) 取得
// 已在事務內時直接沿用外層事務
func (d *DbDao) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if timeout := d.LockTimeout(); timeout > 0 {
			// SET LOCAL 不支援參數綁定
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// conn 事務內回傳事務連線, 否則回傳一般連線
func (d *DbDao) conn(ctx context.Context) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return d.DB.WithContext(ctx)
}

// txConn 只允許在事務內使用
func (d *DbDao) txConn(ctx context.Context) (*gorm.DB, error) {
	tx, ok := txFromContext(ctx)
	if !ok {
		return nil, ErrNoActiveTransaction
	}
	return tx, nil
}
