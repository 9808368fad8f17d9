package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

// ContractKind ...
type ContractKind string

const (
	KindToken        ContractKind = "token"
	KindTokenManager ContractKind = "token_manager"
	KindReserve      ContractKind = "reserve"
	KindFormula      ContractKind = "formula"
)

// Contract is an account holding code on the host.
type Contract struct {
	Address common.Address
	Kind    ContractKind
	Name    string
	// Token is the token minted by a token manager.
	Token common.Address
	// MaxAccountTokens is the max balance of the token an account can hold,
	// for token managers only.
	MaxAccountTokens *uint256.Int
	// FormulaType identifies the pricing formula of a formula contract.
	FormulaType int
}

// Store persists the state of the host: balances, supplies and contracts.
type Store interface {
	uow.Transactional

	GetBalance(
		ctx context.Context, asset, account common.Address,
	) (*uint256.Int, error)
	SetBalance(
		ctx context.Context, asset, account common.Address, amount *uint256.Int,
	) error
	GetSupply(ctx context.Context, asset common.Address) (*uint256.Int, error)
	SetSupply(
		ctx context.Context, asset common.Address, amount *uint256.Int,
	) error
	// GetContract returns nil if no contract is deployed at address.
	GetContract(ctx context.Context, address common.Address) (*Contract, error)
	GetContracts(ctx context.Context) ([]Contract, error)
	AddContract(ctx context.Context, contract Contract) error
	// NextNonce returns the nonce of the next deployment and increments it.
	NextNonce(ctx context.Context) (uint64, error)
	Close()
}
