package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

type marketMakerRepositoryImpl struct {
	marketMaker *domain.MarketMaker

	lock *sync.RWMutex
	tx   *txState
}

func newMarketMakerRepositoryImpl(tx *txState) domain.MarketMakerRepository {
	return &marketMakerRepositoryImpl{
		lock: &sync.RWMutex{},
		tx:   tx,
	}
}

func (r *marketMakerRepositoryImpl) AddMarketMaker(
	_ context.Context, marketMaker *domain.MarketMaker,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.marketMaker != nil {
		return domain.ErrAlreadyInitialized
	}

	r.set(copyMarketMaker(*marketMaker))
	return nil
}

func (r *marketMakerRepositoryImpl) GetMarketMaker(
	_ context.Context,
) (*domain.MarketMaker, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.marketMaker == nil {
		return nil, domain.ErrNotInitialized
	}
	mm := copyMarketMaker(*r.marketMaker)
	return &mm, nil
}

func (r *marketMakerRepositoryImpl) UpdateMarketMaker(
	_ context.Context,
	updateFn func(m *domain.MarketMaker) (*domain.MarketMaker, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.marketMaker == nil {
		return domain.ErrNotInitialized
	}

	current := copyMarketMaker(*r.marketMaker)
	updated, err := updateFn(&current)
	if err != nil {
		return err
	}

	r.set(copyMarketMaker(*updated))
	return nil
}

// set must be called with the lock held.
func (r *marketMakerRepositoryImpl) set(mm domain.MarketMaker) {
	prev := r.marketMaker
	r.marketMaker = &mm
	r.tx.record(func() {
		r.lock.Lock()
		defer r.lock.Unlock()
		r.marketMaker = prev
	})
}

func copyMarketMaker(m domain.MarketMaker) domain.MarketMaker {
	if m.BuyFeePct != nil {
		m.BuyFeePct = m.BuyFeePct.Clone()
	}
	if m.SellFeePct != nil {
		m.SellFeePct = m.SellFeePct.Clone()
	}
	return m
}
