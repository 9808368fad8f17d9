// Package chain implements a simulated ledger hosting the collaborators of
// the market maker: tokens, token manager, reserve and pricing formulas.
package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
	"github.com/tdex-network/tdex-bondingcurve/pkg/marketmaking"
	"github.com/tdex-network/tdex-bondingcurve/pkg/marketmaking/formula"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mathutil"
)

// NativeAsset identifies the host's coin.
var NativeAsset = common.Address{}

// Host is the ledger the market maker lives on. It implements ports.Host and
// ports.Bank and takes part in units of work through its store.
type Host struct {
	store    Store
	deployer common.Address
}

// NewHost returns a host over the given store. Contract addresses are
// derived from deployer and the store's nonce.
func NewHost(store Store, deployer common.Address) *Host {
	return &Host{store, deployer}
}

// Begin implements uow.Transactional.
func (h *Host) Begin() (uow.Tx, error) {
	return h.store.Begin()
}

// ContextKey implements uow.ContextProvider, sharing the transaction of a
// store that provides its own key.
func (h *Host) ContextKey() interface{} {
	if cp, ok := h.store.(uow.ContextProvider); ok {
		return cp.ContextKey()
	}
	return h.store
}

func (h *Host) Close() {
	h.store.Close()
}

func (h *Host) HasCode(ctx context.Context, account common.Address) (bool, error) {
	contract, err := h.store.GetContract(ctx, account)
	if err != nil {
		return false, err
	}
	return contract != nil, nil
}

func (h *Host) Formula(
	ctx context.Context, address common.Address,
) (marketmaking.MakingFormula, error) {
	contract, err := h.getContract(ctx, address, KindFormula)
	if err != nil {
		return nil, err
	}

	switch contract.FormulaType {
	case formula.BancorType:
		return formula.Bancor{}, nil
	default:
		return nil, ErrUnknownFormula
	}
}

func (h *Host) TokenManager(
	ctx context.Context, address common.Address,
) (ports.TokenManager, error) {
	contract, err := h.getContract(ctx, address, KindTokenManager)
	if err != nil {
		return nil, err
	}
	return &tokenManager{h, *contract}, nil
}

func (h *Host) Reserve(
	ctx context.Context, address common.Address,
) (ports.Reserve, error) {
	if _, err := h.getContract(ctx, address, KindReserve); err != nil {
		return nil, err
	}
	return &reserve{h, address}, nil
}

func (h *Host) Bank() ports.Bank {
	return h
}

func (h *Host) Contracts(ctx context.Context) ([]Contract, error) {
	return h.store.GetContracts(ctx)
}

// BalanceOf returns the balance of the given asset held by account.
func (h *Host) BalanceOf(
	ctx context.Context, asset, account common.Address,
) (*uint256.Int, error) {
	return h.store.GetBalance(ctx, asset, account)
}

// TotalSupply returns the supply of the given asset.
func (h *Host) TotalSupply(
	ctx context.Context, asset common.Address,
) (*uint256.Int, error) {
	return h.store.GetSupply(ctx, asset)
}

// Transfer moves amount of asset from one account to another.
func (h *Host) Transfer(
	ctx context.Context, asset, from, to common.Address, amount *uint256.Int,
) error {
	if err := h.validateAsset(ctx, asset); err != nil {
		return err
	}
	if amount == nil {
		return ErrInvalidAmount
	}

	fromBalance, err := h.store.GetBalance(ctx, asset, from)
	if err != nil {
		return err
	}
	newFromBalance, err := mathutil.Sub(fromBalance, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: %s holds %s, needed %s",
			ErrInsufficientBalance, from.Hex(), fromBalance.Dec(), amount.Dec(),
		)
	}
	if err := h.store.SetBalance(ctx, asset, from, newFromBalance); err != nil {
		return err
	}

	toBalance, err := h.store.GetBalance(ctx, asset, to)
	if err != nil {
		return err
	}
	newToBalance, err := mathutil.Add(toBalance, amount)
	if err != nil {
		return err
	}
	return h.store.SetBalance(ctx, asset, to, newToBalance)
}

// Mint creates amount of asset out of thin air in favor of account.
func (h *Host) Mint(
	ctx context.Context, asset, to common.Address, amount *uint256.Int,
) error {
	if err := h.validateAsset(ctx, asset); err != nil {
		return err
	}
	if amount == nil {
		return ErrInvalidAmount
	}

	supply, err := h.store.GetSupply(ctx, asset)
	if err != nil {
		return err
	}
	newSupply, err := mathutil.Add(supply, amount)
	if err != nil {
		return err
	}
	balance, err := h.store.GetBalance(ctx, asset, to)
	if err != nil {
		return err
	}
	newBalance, err := mathutil.Add(balance, amount)
	if err != nil {
		return err
	}

	if err := h.store.SetSupply(ctx, asset, newSupply); err != nil {
		return err
	}
	return h.store.SetBalance(ctx, asset, to, newBalance)
}

// Burn destroys amount of asset held by account.
func (h *Host) Burn(
	ctx context.Context, asset, from common.Address, amount *uint256.Int,
) error {
	if err := h.validateAsset(ctx, asset); err != nil {
		return err
	}
	if amount == nil {
		return ErrInvalidAmount
	}

	balance, err := h.store.GetBalance(ctx, asset, from)
	if err != nil {
		return err
	}
	newBalance, err := mathutil.Sub(balance, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: %s holds %s, needed %s",
			ErrInsufficientBalance, from.Hex(), balance.Dec(), amount.Dec(),
		)
	}
	supply, err := h.store.GetSupply(ctx, asset)
	if err != nil {
		return err
	}
	newSupply, err := mathutil.Sub(supply, amount)
	if err != nil {
		return err
	}

	if err := h.store.SetBalance(ctx, asset, from, newBalance); err != nil {
		return err
	}
	return h.store.SetSupply(ctx, asset, newSupply)
}

func (h *Host) getContract(
	ctx context.Context, address common.Address, kind ContractKind,
) (*Contract, error) {
	contract, err := h.store.GetContract(ctx, address)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, address.Hex())
	}
	if contract.Kind != kind {
		return nil, fmt.Errorf(
			"%w: %s is a %s, not a %s",
			ErrWrongContractKind, address.Hex(), contract.Kind, kind,
		)
	}
	return contract, nil
}

func (h *Host) validateAsset(ctx context.Context, asset common.Address) error {
	if asset == NativeAsset {
		return nil
	}
	if _, err := h.getContract(ctx, asset, KindToken); err != nil {
		return fmt.Errorf("%w %s: %s", ErrUnknownAsset, asset.Hex(), err)
	}
	return nil
}

func (h *Host) deploy(ctx context.Context, contract Contract) (common.Address, error) {
	nonce, err := h.store.NextNonce(ctx)
	if err != nil {
		return common.Address{}, err
	}
	contract.Address = crypto.CreateAddress(h.deployer, nonce)
	if err := h.store.AddContract(ctx, contract); err != nil {
		return common.Address{}, err
	}
	return contract.Address, nil
}
