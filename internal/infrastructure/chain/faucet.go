package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

// Faucet mints collateral to any account, for development networks. Each
// request runs in its own unit of work over the host.
type Faucet struct {
	host      *Host
	unit      *uow.UnitOfWork
	maxAmount *uint256.Int
}

// NewFaucet returns a faucet funding at most maxAmount per request, nil for
// no limit.
func NewFaucet(host *Host, maxAmount *uint256.Int) *Faucet {
	return &Faucet{host, uow.NewUnitOfWork(host), maxAmount}
}

// Fund mints amount of asset to account.
func (f *Faucet) Fund(
	ctx context.Context, asset, account common.Address, amount *uint256.Int,
) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if f.maxAmount != nil && amount.Gt(f.maxAmount) {
		return fmt.Errorf("%w of %s", ErrFaucetLimit, f.maxAmount.Dec())
	}

	if err := f.unit.Run(ctx, func(ctx context.Context) error {
		if asset != NativeAsset {
			contract, err := f.host.getContract(ctx, asset, KindToken)
			if err != nil {
				return fmt.Errorf("%w %s: %s", ErrUnknownAsset, asset.Hex(), err)
			}
			if contract.Name == BondedTokenName {
				return ErrFaucetDenied
			}
		}
		return f.host.Mint(ctx, asset, account, amount)
	}); err != nil {
		return err
	}

	log.Debugf(
		"faucet: funded %s with %s of %s", account.Hex(), amount.Dec(), asset.Hex(),
	)
	return nil
}
