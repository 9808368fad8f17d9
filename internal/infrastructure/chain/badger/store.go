package chainbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain"
	dbbadger "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
	"github.com/timshannon/badgerhold/v4"
)

const nonceKey = "nonce"

type balance struct {
	Asset   common.Address
	Account common.Address
	Amount  *uint256.Int
}

type supply struct {
	Asset  common.Address
	Amount *uint256.Int
}

type nonce struct {
	Value uint64
}

type store struct {
	db *dbbadger.DbManager
}

// NewStore returns a chain.Store persisted in the given badger db. It shares
// the db transaction with any other repository of the same DbManager.
func NewStore(db *dbbadger.DbManager) chain.Store {
	return &store{db}
}

func (s *store) Begin() (uow.Tx, error) {
	return s.db.Begin()
}

func (s *store) ContextKey() interface{} {
	return s.db.ContextKey()
}

func (s *store) GetBalance(
	ctx context.Context, asset, account common.Address,
) (*uint256.Int, error) {
	var b balance
	if err := s.get(ctx, balanceKey(asset, account), &b); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return new(uint256.Int), nil
		}
		return nil, err
	}
	return b.Amount, nil
}

func (s *store) SetBalance(
	ctx context.Context, asset, account common.Address, amount *uint256.Int,
) error {
	return s.upsert(ctx, balanceKey(asset, account), balance{asset, account, amount})
}

func (s *store) GetSupply(
	ctx context.Context, asset common.Address,
) (*uint256.Int, error) {
	var sp supply
	if err := s.get(ctx, asset.Hex(), &sp); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return new(uint256.Int), nil
		}
		return nil, err
	}
	return sp.Amount, nil
}

func (s *store) SetSupply(
	ctx context.Context, asset common.Address, amount *uint256.Int,
) error {
	return s.upsert(ctx, asset.Hex(), supply{asset, amount})
}

func (s *store) GetContract(
	ctx context.Context, address common.Address,
) (*chain.Contract, error) {
	var c chain.Contract
	if err := s.get(ctx, address.Hex(), &c); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *store) GetContracts(ctx context.Context) ([]chain.Contract, error) {
	var err error
	var contracts []chain.Contract
	if tx := s.db.Txn(ctx); tx != nil {
		err = s.db.Store.TxFind(tx, &contracts, nil)
	} else {
		err = s.db.Store.Find(&contracts, nil)
	}
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (s *store) AddContract(ctx context.Context, contract chain.Contract) error {
	var err error
	key := contract.Address.Hex()
	if tx := s.db.Txn(ctx); tx != nil {
		err = s.db.Store.TxInsert(tx, key, contract)
	} else {
		err = s.db.Store.Insert(key, contract)
	}
	if err != nil {
		return fmt.Errorf("adding contract %s: %w", key, err)
	}
	return nil
}

func (s *store) NextNonce(ctx context.Context) (uint64, error) {
	var n nonce
	if err := s.get(ctx, nonceKey, &n); err != nil {
		if !errors.Is(err, badgerhold.ErrNotFound) {
			return 0, err
		}
	}
	if err := s.upsert(ctx, nonceKey, nonce{n.Value + 1}); err != nil {
		return 0, err
	}
	return n.Value, nil
}

// Close is a no-op, the db is closed by its DbManager owner.
func (s *store) Close() {}

func (s *store) get(ctx context.Context, key string, result interface{}) error {
	if tx := s.db.Txn(ctx); tx != nil {
		return s.db.Store.TxGet(tx, key, result)
	}
	return s.db.Store.Get(key, result)
}

func (s *store) upsert(ctx context.Context, key string, data interface{}) error {
	if tx := s.db.Txn(ctx); tx != nil {
		return s.db.Store.TxUpsert(tx, key, data)
	}
	return s.db.Store.Upsert(key, data)
}

func balanceKey(asset, account common.Address) string {
	return asset.Hex() + ":" + account.Hex()
}
