package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const marketMakerKey = "marketmaker"

type marketMakerRepositoryImpl struct {
	db *DbManager
}

// NewMarketMakerRepositoryImpl initialize a badger implementation of the
// domain.MarketMakerRepository
func NewMarketMakerRepositoryImpl(db *DbManager) domain.MarketMakerRepository {
	return marketMakerRepositoryImpl{db}
}

func (r marketMakerRepositoryImpl) AddMarketMaker(
	ctx context.Context, marketMaker *domain.MarketMaker,
) error {
	var err error
	if tx := r.db.Txn(ctx); tx != nil {
		err = r.db.Store.TxInsert(tx, marketMakerKey, *marketMaker)
	} else {
		err = r.db.Store.Insert(marketMakerKey, *marketMaker)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrAlreadyInitialized
		}
		return err
	}
	return nil
}

func (r marketMakerRepositoryImpl) GetMarketMaker(
	ctx context.Context,
) (*domain.MarketMaker, error) {
	var err error
	var marketMaker domain.MarketMaker

	if tx := r.db.Txn(ctx); tx != nil {
		err = r.db.Store.TxGet(tx, marketMakerKey, &marketMaker)
	} else {
		err = r.db.Store.Get(marketMakerKey, &marketMaker)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrNotInitialized
		}
		return nil, err
	}

	return &marketMaker, nil
}

func (r marketMakerRepositoryImpl) UpdateMarketMaker(
	ctx context.Context,
	updateFn func(m *domain.MarketMaker) (*domain.MarketMaker, error),
) error {
	current, err := r.GetMarketMaker(ctx)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	if tx := r.db.Txn(ctx); tx != nil {
		err = r.db.Store.TxUpdate(tx, marketMakerKey, *updated)
	} else {
		err = r.db.Store.Update(marketMakerKey, *updated)
	}
	if err != nil {
		return fmt.Errorf("trying to update market maker: %w", err)
	}
	return nil
}
