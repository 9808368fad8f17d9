package dbbadger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
	"github.com/timshannon/badgerhold/v4"
)

type txKey struct{}

// DbManager holds the badgerhold store shared by the market maker
// repositories and by the ledger of the host. Every Begin opens a single
// read-write badger transaction, stored in the context under ContextKey.
// Transactions are serialized: Begin waits for the open one to be committed
// or discarded, so that concurrent units of work never conflict.
type DbManager struct {
	Store *badgerhold.Store

	txLock *sync.Mutex
}

// NewDbManager opens (or creates if not exists) the badger store on disk. It
// expects a base data dir and an optional logger. An empty dir opens an
// in-memory store.
func NewDbManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	store, err := createDb(baseDbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	return &DbManager{store, &sync.Mutex{}}, nil
}

// Begin implements uow.Transactional.
func (d *DbManager) Begin() (uow.Tx, error) {
	d.txLock.Lock()
	return &tx{Txn: d.Store.Badger().NewTransaction(true), release: d.txLock.Unlock}, nil
}

// ContextKey implements uow.ContextProvider.
func (d *DbManager) ContextKey() interface{} {
	return txKey{}
}

// Txn returns the badger transaction carried by the given context, if any.
func (d *DbManager) Txn(ctx context.Context) *badger.Txn {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		return t.Txn
	}
	return nil
}

func (d *DbManager) Close() {
	d.Store.Close()
}

type tx struct {
	*badger.Txn
	release func()
	once    sync.Once
}

func (t *tx) Commit() error {
	defer t.once.Do(t.release)
	return t.Txn.Commit()
}

func (t *tx) Rollback() error {
	defer t.once.Do(t.release)
	t.Txn.Discard()
	return nil
}

type repoManager struct {
	db                        *DbManager
	marketMakerRepository     domain.MarketMakerRepository
	collateralTokenRepository domain.CollateralTokenRepository
}

// NewRepoManager returns the badger implementation of ports.RepoManager.
func NewRepoManager(db *DbManager) ports.RepoManager {
	return &repoManager{
		db:                        db,
		marketMakerRepository:     NewMarketMakerRepositoryImpl(db),
		collateralTokenRepository: NewCollateralTokenRepositoryImpl(db),
	}
}

func (r *repoManager) MarketMakerRepository() domain.MarketMakerRepository {
	return r.marketMakerRepository
}

func (r *repoManager) CollateralTokenRepository() domain.CollateralTokenRepository {
	return r.collateralTokenRepository
}

func (r *repoManager) Begin() (uow.Tx, error) {
	return r.db.Begin()
}

func (r *repoManager) ContextKey() interface{} {
	return r.db.ContextKey()
}

func (r *repoManager) Close() {
	r.db.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	_, err := buff.Write(data)
	if err != nil {
		return err
	}

	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	var opts badger.Options
	if len(dbDir) <= 0 {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dbDir)
	}
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
