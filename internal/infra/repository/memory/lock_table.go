package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/infra/repository/db"
)

// lockTable 每個 key 一個容量為 1 的 channel, 放得進去代表取得排他鎖
// refs 計算持有者加等待者, 歸零就移除, 不存在的 id 不會留下項目
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{entries: make(map[string]*lockEntry)}
}

func (l *lockTable) ref(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *lockTable) unref(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// acquire 最多等待 timeout, 逾時回傳 db.ErrLockTimeout
func (l *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	e := l.ref(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-timer.C:
		l.unref(key, e)
		return fmt.Errorf("%w: %s", db.ErrLockTimeout, key)
	case <-ctx.Done():
		l.unref(key, e)
		return ctx.Err()
	}
}

// release 只能由持有者呼叫
func (l *lockTable) release(key string) {
	l.mu.Lock()
	e := l.entries[key]
	l.mu.Unlock()

	<-e.sem
	l.unref(key, e)
}

func (l *lockTable) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func cartKey(id uint) string {
	return fmt.Sprintf("cart:%d", id)
}
