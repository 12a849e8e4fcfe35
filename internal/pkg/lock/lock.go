// Package lock serialises work on a table with one mutex per table id.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// tableMutex is a table's mutex plus the number of goroutines holding or
// waiting for it. The entry is dropped when refs reaches zero, so an id maps
// to at most one live mutex.
type tableMutex struct {
	mu   sync.Mutex
	refs int
}

// TableLock hands out one mutex per table. The zero value is not usable;
// call NewTableLock.
type TableLock struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*tableMutex
}

// NewTableLock creates an empty TableLock.
func NewTableLock() *TableLock {
	return &TableLock{locks: make(map[uuid.UUID]*tableMutex)}
}

// acquire returns the table's mutex and takes a reference on it.
func (tl *TableLock) acquire(id uuid.UUID) *tableMutex {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	m, ok := tl.locks[id]
	if !ok {
		m = &tableMutex{}
		tl.locks[id] = m
	}
	m.refs++
	return m
}

// release drops a reference taken by acquire.
func (tl *TableLock) release(id uuid.UUID, m *tableMutex) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	m.refs--
	if m.refs == 0 && tl.locks[id] == m {
		delete(tl.locks, id)
	}
}

func (tl *TableLock) lookup(id uuid.UUID) *tableMutex {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.locks[id]
}

func (tl *TableLock) lock(id uuid.UUID) *tableMutex {
	m := tl.acquire(id)
	m.mu.Lock()
	return m
}

func (tl *TableLock) unlock(id uuid.UUID, m *tableMutex) {
	m.mu.Unlock()
	tl.release(id, m)
}

// Lock blocks until the table's mutex is held.
func (tl *TableLock) Lock(id uuid.UUID) {
	tl.lock(id)
}

// Unlock releases the table's mutex. The holder keeps the entry alive, so
// the mutex found here is the one that was locked.
func (tl *TableLock) Unlock(id uuid.UUID) {
	if m := tl.lookup(id); m != nil {
		tl.unlock(id, m)
	}
}

// TryLock acquires the table's mutex if it is free.
func (tl *TableLock) TryLock(id uuid.UUID) bool {
	m := tl.acquire(id)
	if m.mu.TryLock() {
		return true
	}
	tl.release(id, m)
	return false
}

// LockWithTimeout waits for the table's mutex until timeout elapses or ctx
// is done. It returns false if the mutex was not acquired.
func (tl *TableLock) LockWithTimeout(ctx context.Context, id uuid.UUID, timeout time.Duration) bool {
	_, ok := tl.lockWithTimeout(ctx, id, timeout)
	return ok
}

func (tl *TableLock) lockWithTimeout(ctx context.Context, id uuid.UUID, timeout time.Duration) (*tableMutex, bool) {
	m := tl.acquire(id)
	if m.mu.TryLock() {
		return m, true
	}

	done := make(chan struct{})
	go func() {
		m.mu.Lock()
		close(done)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-done:
		return m, true
	case <-timeoutCtx.Done():
		// The waiter still gets the mutex eventually; hand it straight back.
		go func() {
			<-done
			tl.unlock(id, m)
		}()
		return nil, false
	}
}

// WithLock runs fn while holding the table's mutex.
func (tl *TableLock) WithLock(id uuid.UUID, fn func() error) error {
	m := tl.lock(id)
	defer tl.unlock(id, m)
	return fn()
}

// WithLockContext runs fn while holding the table's mutex. It returns
// ErrLockTimeout if the mutex is not acquired in time, and ctx.Err() if ctx
// was cancelled while waiting.
func (tl *TableLock) WithLockContext(ctx context.Context, id uuid.UUID, timeout time.Duration, fn func() error) error {
	m, ok := tl.lockWithTimeout(ctx, id, timeout)
	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrLockTimeout
	}
	defer tl.unlock(id, m)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn()
	}
}

// IsLocked reports whether the table's mutex is held right now.
func (tl *TableLock) IsLocked(id uuid.UUID) bool {
	m := tl.lookup(id)
	if m == nil {
		return false
	}
	if m.mu.TryLock() {
		m.mu.Unlock()
		return false
	}
	return true
}

// Len returns the number of tables whose mutex is held or awaited.
func (tl *TableLock) Len() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.locks)
}
