package uow

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Transactional begins a transaction
type Transactional interface {
	Begin() (Tx, error)
}

// Tx represents an all-or-nothing transaction, by committing or rolling back
// a set of read/write operations
type Tx interface {
	Commit() error
	Rollback() error
}

// ContextProvider returns the key the transaction of a Transactional is
// stored with in the context passed to Run's function. Transactionals sharing
// the same key share the same transaction.
type ContextProvider interface {
	ContextKey() interface{}
}

// UnitOfWork allows to run multiple transactions as one
type UnitOfWork struct {
	repositories []Transactional
}

// NewUnitOfWork returns a new UnitOfWork with the given Transaction interfaces
func NewUnitOfWork(repositories ...Transactional) *UnitOfWork {
	return &UnitOfWork{repositories}
}

// Run executes the given function over a new set of transactions, one per
// distinct context key. The context passed to fn carries every transaction,
// each retrievable with the key of its Transactional. Run makes sure that all
// the transactions are either all committed or all rolled back if fn returns
// an error or panics.
func (u *UnitOfWork) Run(
	ctx context.Context, fn func(ctx context.Context) error,
) (err error) {
	txs := make([]Tx, 0, len(u.repositories))

	defer func() {
		if err == nil {
			return
		}
		// undo in reverse order of begin.
		for i := len(txs) - 1; i >= 0; i-- {
			if rbErr := txs[i].Rollback(); rbErr != nil {
				log.WithError(rbErr).Warn("unit of work: failed to rollback tx")
			}
		}
	}()

	defer func() {
		if err != nil {
			return
		}
		for _, tx := range txs {
			if cErr := tx.Commit(); cErr != nil {
				err = cErr
				return
			}
		}
	}()

	defer func() {
		// panicking returns an error that causes txs rollback
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recovered: %v", rec)
		}
	}()

	keys := make(map[interface{}]struct{})
	for _, r := range u.repositories {
		var key interface{} = r
		if cp, ok := r.(ContextProvider); ok {
			key = cp.ContextKey()
		}
		if _, ok := keys[key]; ok {
			continue
		}

		tx, bErr := r.Begin()
		if bErr != nil {
			return bErr
		}
		keys[key] = struct{}{}
		txs = append(txs, tx)
		ctx = context.WithValue(ctx, key, tx)
	}

	return fn(ctx)
}
