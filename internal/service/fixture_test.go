package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"github.com/RoyceAzure/lab/shop/internal/infra/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordingStore 記錄上鎖呼叫, 並可注入指定步驟的錯誤
type recordingStore struct {
	*memory.Store

	mu             sync.Mutex
	lockCalls      [][]uint
	createOrderErr error
	detachErr      error
}

func newRecordingStore(opts ...memory.Option) *recordingStore {
	return &recordingStore{Store: memory.NewStore(opts...)}
}

func (r *recordingStore) LockProductsForUpdate(ctx context.Context, productIDs []uint) ([]model.Product, error) {
	r.mu.Lock()
	r.lockCalls = append(r.lockCalls, append([]uint(nil), productIDs...))
	r.mu.Unlock()
	return r.Store.LockProductsForUpdate(ctx, productIDs)
}

func (r *recordingStore) CreateOrder(ctx context.Context, order *model.Order) error {
	if r.createOrderErr != nil {
		return r.createOrderErr
	}
	return r.Store.CreateOrder(ctx, order)
}

func (r *recordingStore) DetachCart(ctx context.Context, userProfileID uint) error {
	if r.detachErr != nil {
		return r.detachErr
	}
	return r.Store.DetachCart(ctx, userProfileID)
}

func (r *recordingStore) LockCalls() [][]uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]uint(nil), r.lockCalls...)
}

func (r *recordingStore) putProduct(t *testing.T, id uint, price string, qty int) {
	t.Helper()
	require.NoError(t, r.PutProduct(model.Product{
		ProductID:         id,
		Name:              fmt.Sprintf("product-%d", id),
		Brand:             "acme",
		Price:             decimal.RequireFromString(price),
		AvailableQuantity: qty,
	}))
}

// putUserWithCart 使用者 id 與購物車 id 相同, 方便閱讀
func (r *recordingStore) putUserWithCart(userID uint, items ...model.CartItem) {
	cartID := userID
	r.PutCart(model.Cart{CartID: cartID, CartItems: items})
	r.PutUserProfile(model.UserProfile{UserProfileID: userID, UserName: fmt.Sprintf("user-%d", userID), CartID: &cartID})
}

func (r *recordingStore) stock(t *testing.T, productID uint) int {
	t.Helper()
	p, err := r.GetProductByID(context.Background(), productID)
	require.NoError(t, err)
	return p.AvailableQuantity
}

func item(productID uint, qty int) model.CartItem {
	return model.CartItem{ProductID: productID, Quantity: qty}
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func sequenceIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var errInjected = errors.New("injected failure")
