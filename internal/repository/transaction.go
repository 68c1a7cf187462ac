package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	db    *gorm.DB
	mu    sync.Mutex
	hooks []func()
}

// Transactor runs a unit of work inside a single database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor constructs a GORM backed transactor.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// Calls nested inside an open transaction join it.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.db = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}

	state.mu.Lock()
	hooks := state.hooks
	state.hooks = nil
	state.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
	return nil
}

// AfterCommit runs fn once the surrounding transaction commits, or right away
// when ctx carries no transaction. Hooks of rolled back transactions are dropped.
func AfterCommit(ctx context.Context, fn func()) {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		fn()
		return
	}
	state.mu.Lock()
	state.hooks = append(state.hooks, fn)
	state.mu.Unlock()
}

// conn returns the transaction bound to ctx, falling back to db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && state.db != nil {
		return state.db.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
