package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// tokenManager mints and burns the token of its contract, enforcing the max
// balance per account.
type tokenManager struct {
	host     *Host
	contract Contract
}

func (t *tokenManager) Address() common.Address {
	return t.contract.Address
}

func (t *tokenManager) Token() common.Address {
	return t.contract.Token
}

func (t *tokenManager) MaxAccountTokens(_ context.Context) (*uint256.Int, error) {
	return t.contract.MaxAccountTokens.Clone(), nil
}

func (t *tokenManager) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	return t.host.TotalSupply(ctx, t.contract.Token)
}

func (t *tokenManager) BalanceOf(
	ctx context.Context, account common.Address,
) (*uint256.Int, error) {
	return t.host.BalanceOf(ctx, t.contract.Token, account)
}

func (t *tokenManager) Mint(
	ctx context.Context, to common.Address, amount *uint256.Int,
) error {
	balance, err := t.host.BalanceOf(ctx, t.contract.Token, to)
	if err != nil {
		return err
	}
	newBalance, overflow := new(uint256.Int).AddOverflow(balance, amount)
	if overflow || newBalance.Gt(t.contract.MaxAccountTokens) {
		return ErrMaxAccountTokens
	}
	return t.host.Mint(ctx, t.contract.Token, to, amount)
}

func (t *tokenManager) Burn(
	ctx context.Context, from common.Address, amount *uint256.Int,
) error {
	return t.host.Burn(ctx, t.contract.Token, from, amount)
}

// reserve is an agent account holding collateral.
type reserve struct {
	host    *Host
	address common.Address
}

func (r *reserve) Address() common.Address {
	return r.address
}

func (r *reserve) Balance(
	ctx context.Context, collateral common.Address,
) (*uint256.Int, error) {
	return r.host.BalanceOf(ctx, collateral, r.address)
}

func (r *reserve) Transfer(
	ctx context.Context, collateral, to common.Address, amount *uint256.Int,
) error {
	if err := r.host.Transfer(ctx, collateral, r.address, to, amount); err != nil {
		return fmt.Errorf("reserve send reverted: %w", err)
	}
	return nil
}
