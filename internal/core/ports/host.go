package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/pkg/marketmaking"
)

// Host gives access to the contracts deployed on the ledger the market maker
// lives on. Implementations that also implement uow.Transactional take part
// in the all-or-nothing execution of every operation.
type Host interface {
	// HasCode returns whether the given account holds executable code.
	HasCode(ctx context.Context, account common.Address) (bool, error)
	Formula(
		ctx context.Context, address common.Address,
	) (marketmaking.MakingFormula, error)
	TokenManager(ctx context.Context, address common.Address) (TokenManager, error)
	Reserve(ctx context.Context, address common.Address) (Reserve, error)
	Bank() Bank
}

// TokenManager mints and burns the bonded token.
type TokenManager interface {
	Address() common.Address
	// Token returns the address of the managed token.
	Token() common.Address
	// MaxAccountTokens returns the max balance an account can hold.
	MaxAccountTokens(ctx context.Context) (*uint256.Int, error)
	TotalSupply(ctx context.Context) (*uint256.Int, error)
	BalanceOf(ctx context.Context, account common.Address) (*uint256.Int, error)
	Mint(ctx context.Context, to common.Address, amount *uint256.Int) error
	Burn(ctx context.Context, from common.Address, amount *uint256.Int) error
}

// Reserve holds the collateral backing the bonded token. Deposits are plain
// transfers to its address.
type Reserve interface {
	Address() common.Address
	Balance(ctx context.Context, collateral common.Address) (*uint256.Int, error)
	Transfer(
		ctx context.Context,
		collateral, to common.Address, amount *uint256.Int,
	) error
}

// Bank moves collateral, native or fungible, between accounts.
type Bank interface {
	BalanceOf(
		ctx context.Context, asset, account common.Address,
	) (*uint256.Int, error)
	Transfer(
		ctx context.Context,
		asset, from, to common.Address, amount *uint256.Int,
	) error
}
