package database

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

const (
	DefaultPoolSize   = 20
	DefaultRetryDelay = 100 * time.Millisecond
)

// ErrPoolExhausted is returned when no connection slot frees up after the retry
var ErrPoolExhausted = errors.New("database pool exhausted")

// Pool bounds concurrent database work. A caller that finds every slot
// taken waits one retry delay, tries once more and then gives up.
type Pool struct {
	db         *gorm.DB
	slots      *semaphore.Weighted
	retryDelay time.Duration
}

// NewPool wraps db with size slots
func NewPool(db *gorm.DB, size int, retryDelay time.Duration) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	if retryDelay < 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Pool{
		db:         db,
		slots:      semaphore.NewWeighted(int64(size)),
		retryDelay: retryDelay,
	}
}

func (p *Pool) acquire(ctx context.Context) error {
	if p.slots.TryAcquire(1) {
		return nil
	}

	timer := time.NewTimer(p.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if p.slots.TryAcquire(1) {
		return nil
	}
	return ErrPoolExhausted
}

// Do runs fn with a session bound to ctx while holding a slot
func (p *Pool) Do(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.slots.Release(1)
	return fn(p.db.WithContext(ctx))
}

// Transaction runs fn inside a transaction while holding a slot. The
// transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics.
func (p *Pool) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.slots.Release(1)
	return p.db.WithContext(ctx).Transaction(fn)
}

// DB returns the underlying handle for setup code such as migrations
func (p *Pool) DB() *gorm.DB {
	return p.db
}

// Close closes the underlying connections
func (p *Pool) Close() error {
	return Close(p.db)
}
