package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// CollateralTokenRepository is the abstraction for any kind of database
// intended to persist the collateral registry. Entries are never deleted.
type CollateralTokenRepository interface {
	// GetCollateralToken returns the entry for the given collateral, or the
	// zero-valued record if unknown.
	GetCollateralToken(
		ctx context.Context, address common.Address,
	) (*CollateralToken, error)
	// GetWhitelistedCollateralTokens returns all whitelisted entries.
	GetWhitelistedCollateralTokens(ctx context.Context) ([]CollateralToken, error)
	// UpdateCollateralToken updates the entry for the given collateral,
	// creating its slot if missing. Nothing is stored if updateFn fails.
	UpdateCollateralToken(
		ctx context.Context,
		address common.Address,
		updateFn func(c *CollateralToken) (*CollateralToken, error),
	) error
}
