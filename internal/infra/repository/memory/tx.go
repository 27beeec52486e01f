package memory

import (
	"context"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/shopspring/decimal"
)

type txKey struct{}

// memTx 事務內的寫入先暫存, commit 時一次套用, rollback 直接丟棄
type memTx struct {
	held         map[string]struct{}
	order        []string
	quantities   map[uint]int
	prices       map[uint]decimal.Decimal
	orders       []model.Order
	clearedCarts map[uint]struct{}
	detached     map[uint]struct{}
}

func newMemTx() *memTx {
	return &memTx{
		held:         make(map[string]struct{}),
		quantities:   make(map[uint]int),
		prices:       make(map[uint]decimal.Decimal),
		clearedCarts: make(map[uint]struct{}),
		detached:     make(map[uint]struct{}),
	}
}

func txFromContext(ctx context.Context) (*memTx, bool) {
	tx, ok := ctx.Value(txKey{}).(*memTx)
	return tx, ok && tx != nil
}
