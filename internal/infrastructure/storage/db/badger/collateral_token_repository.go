package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type collateralTokenRepositoryImpl struct {
	db *DbManager
}

// NewCollateralTokenRepositoryImpl initialize a badger implementation of the
// domain.CollateralTokenRepository
func NewCollateralTokenRepositoryImpl(
	db *DbManager,
) domain.CollateralTokenRepository {
	return collateralTokenRepositoryImpl{db}
}

func (r collateralTokenRepositoryImpl) GetCollateralToken(
	ctx context.Context, address common.Address,
) (*domain.CollateralToken, error) {
	var err error
	var token domain.CollateralToken

	key := address.Hex()
	if tx := r.db.Txn(ctx); tx != nil {
		err = r.db.Store.TxGet(tx, key, &token)
	} else {
		err = r.db.Store.Get(key, &token)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.NewCollateralToken(address), nil
		}
		return nil, err
	}

	return &token, nil
}

func (r collateralTokenRepositoryImpl) GetWhitelistedCollateralTokens(
	ctx context.Context,
) ([]domain.CollateralToken, error) {
	query := badgerhold.Where("Whitelisted").Eq(true)

	var err error
	var tokens []domain.CollateralToken
	if tx := r.db.Txn(ctx); tx != nil {
		err = r.db.Store.TxFind(tx, &tokens, query)
	} else {
		err = r.db.Store.Find(&tokens, query)
	}
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r collateralTokenRepositoryImpl) UpdateCollateralToken(
	ctx context.Context,
	address common.Address,
	updateFn func(c *domain.CollateralToken) (*domain.CollateralToken, error),
) error {
	current, err := r.GetCollateralToken(ctx, address)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	key := address.Hex()
	if tx := r.db.Txn(ctx); tx != nil {
		err = r.db.Store.TxUpsert(tx, key, *updated)
	} else {
		err = r.db.Store.Upsert(key, *updated)
	}
	if err != nil {
		return fmt.Errorf(
			"trying to update collateral token %s: %w", address.Hex(), err,
		)
	}
	return nil
}
