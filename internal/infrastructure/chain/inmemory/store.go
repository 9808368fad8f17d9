package inmemory

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

// ErrContractExists ...
var ErrContractExists = errors.New("contract already deployed at address")

type balanceKey struct {
	asset   common.Address
	account common.Address
}

type store struct {
	balances  map[balanceKey]*uint256.Int
	supplies  map[common.Address]*uint256.Int
	contracts map[common.Address]chain.Contract
	nonce     uint64

	lock     *sync.RWMutex
	journals *uow.Journals
}

// NewStore returns an in-memory chain.Store. Writes made while a transaction
// is open are journaled and undone on rollback. Transactions are serialized:
// Begin waits for the open one to be committed or rolled back.
func NewStore() chain.Store {
	return &store{
		balances:  map[balanceKey]*uint256.Int{},
		supplies:  map[common.Address]*uint256.Int{},
		contracts: map[common.Address]chain.Contract{},
		lock:      &sync.RWMutex{},
		journals:  &uow.Journals{},
	}
}

func (s *store) Begin() (uow.Tx, error) {
	return s.journals.Begin(), nil
}

func (s *store) GetBalance(
	_ context.Context, asset, account common.Address,
) (*uint256.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return cloneOrZero(s.balances[balanceKey{asset, account}]), nil
}

func (s *store) SetBalance(
	_ context.Context, asset, account common.Address, amount *uint256.Int,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	key := balanceKey{asset, account}
	prev, existed := s.balances[key]
	s.balances[key] = amount.Clone()
	s.record(func() {
		if existed {
			s.balances[key] = prev
			return
		}
		delete(s.balances, key)
	})
	return nil
}

func (s *store) GetSupply(
	_ context.Context, asset common.Address,
) (*uint256.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return cloneOrZero(s.supplies[asset]), nil
}

func (s *store) SetSupply(
	_ context.Context, asset common.Address, amount *uint256.Int,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	prev, existed := s.supplies[asset]
	s.supplies[asset] = amount.Clone()
	s.record(func() {
		if existed {
			s.supplies[asset] = prev
			return
		}
		delete(s.supplies, asset)
	})
	return nil
}

func (s *store) GetContract(
	_ context.Context, address common.Address,
) (*chain.Contract, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	c, ok := s.contracts[address]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *store) GetContracts(_ context.Context) ([]chain.Contract, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	contracts := make([]chain.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		contracts = append(contracts, c)
	}
	sort.SliceStable(contracts, func(i, j int) bool {
		return bytes.Compare(contracts[i].Address[:], contracts[j].Address[:]) < 0
	})
	return contracts, nil
}

func (s *store) AddContract(_ context.Context, contract chain.Contract) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.contracts[contract.Address]; ok {
		return ErrContractExists
	}
	s.contracts[contract.Address] = contract
	s.record(func() {
		delete(s.contracts, contract.Address)
	})
	return nil
}

func (s *store) NextNonce(_ context.Context) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	nonce := s.nonce
	s.nonce++
	s.record(func() {
		s.nonce = nonce
	})
	return nonce, nil
}

func (s *store) Close() {}

// record journals the given undo function, which is run with the lock held.
// It must be called with the lock held.
func (s *store) record(undo func()) {
	s.journals.Record(func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		undo()
	})
}

func cloneOrZero(n *uint256.Int) *uint256.Int {
	if n == nil {
		return new(uint256.Int)
	}
	return n.Clone()
}
