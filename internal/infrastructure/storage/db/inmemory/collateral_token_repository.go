package inmemory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

type collateralTokenRepositoryImpl struct {
	tokens map[common.Address]domain.CollateralToken

	lock *sync.RWMutex
	tx   *txState
}

func newCollateralTokenRepositoryImpl(
	tx *txState,
) domain.CollateralTokenRepository {
	return &collateralTokenRepositoryImpl{
		tokens: map[common.Address]domain.CollateralToken{},
		lock:   &sync.RWMutex{},
		tx:     tx,
	}
}

func (r *collateralTokenRepositoryImpl) GetCollateralToken(
	_ context.Context, address common.Address,
) (*domain.CollateralToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.get(address), nil
}

func (r *collateralTokenRepositoryImpl) GetWhitelistedCollateralTokens(
	_ context.Context,
) ([]domain.CollateralToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	tokens := make([]domain.CollateralToken, 0, len(r.tokens))
	for _, t := range r.tokens {
		if t.IsWhitelisted() {
			tokens = append(tokens, copyCollateralToken(t))
		}
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return bytes.Compare(tokens[i].Address[:], tokens[j].Address[:]) < 0
	})
	return tokens, nil
}

func (r *collateralTokenRepositoryImpl) UpdateCollateralToken(
	_ context.Context,
	address common.Address,
	updateFn func(c *domain.CollateralToken) (*domain.CollateralToken, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	updated, err := updateFn(r.get(address))
	if err != nil {
		return err
	}

	prev, existed := r.tokens[address]
	r.tokens[address] = copyCollateralToken(*updated)
	r.tx.record(func() {
		r.lock.Lock()
		defer r.lock.Unlock()
		if existed {
			r.tokens[address] = prev
			return
		}
		delete(r.tokens, address)
	})
	return nil
}

// get must be called with the lock held.
func (r *collateralTokenRepositoryImpl) get(
	address common.Address,
) *domain.CollateralToken {
	t, ok := r.tokens[address]
	if !ok {
		return domain.NewCollateralToken(address)
	}
	c := copyCollateralToken(t)
	return &c
}

func copyCollateralToken(t domain.CollateralToken) domain.CollateralToken {
	if t.VirtualSupply != nil {
		t.VirtualSupply = t.VirtualSupply.Clone()
	}
	if t.VirtualBalance != nil {
		t.VirtualBalance = t.VirtualBalance.Clone()
	}
	return t
}
