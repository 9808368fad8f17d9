package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CollateralToken defines the registry entry of a collateral asset the market
// maker accepts in exchange of bonded tokens.
type CollateralToken struct {
	// Address identifies the collateral, NativeAsset for the chain's coin.
	Address     common.Address
	Whitelisted bool
	// VirtualSupply and VirtualBalance are offsets added to the real supply and
	// reserve balance when pricing an order.
	VirtualSupply  *uint256.Int
	VirtualBalance *uint256.Int
	// ReserveRatio is expressed in parts per million.
	ReserveRatio uint32
}

// NewCollateralToken returns the zero-valued, non whitelisted record for the
// given collateral.
func NewCollateralToken(address common.Address) *CollateralToken {
	return &CollateralToken{
		Address:        address,
		VirtualSupply:  new(uint256.Int),
		VirtualBalance: new(uint256.Int),
	}
}

// IsNative returns whether the collateral is the chain's native asset.
func (c *CollateralToken) IsNative() bool {
	return c.Address == NativeAsset
}

// IsWhitelisted ...
func (c *CollateralToken) IsWhitelisted() bool {
	return c.Whitelisted
}

// Whitelist makes the collateral tradable with the given curve parameters.
func (c *CollateralToken) Whitelist(
	virtualSupply, virtualBalance *uint256.Int, reserveRatio uint32,
) error {
	if c.IsWhitelisted() {
		return ErrAlreadyWhitelisted
	}
	if !isValidReserveRatio(reserveRatio) {
		return ErrInvalidReserveRatio
	}

	c.Whitelisted = true
	c.setParams(virtualSupply, virtualBalance, reserveRatio)
	return nil
}

// Update overwrites the curve parameters of a whitelisted collateral.
func (c *CollateralToken) Update(
	virtualSupply, virtualBalance *uint256.Int, reserveRatio uint32,
) error {
	if !c.IsWhitelisted() {
		return ErrNotWhitelisted
	}
	if !isValidReserveRatio(reserveRatio) {
		return ErrInvalidReserveRatio
	}

	c.setParams(virtualSupply, virtualBalance, reserveRatio)
	return nil
}

// Remove soft-deletes the collateral by zeroing all of its fields.
func (c *CollateralToken) Remove() error {
	if !c.IsWhitelisted() {
		return ErrNotWhitelisted
	}

	c.Whitelisted = false
	c.setParams(nil, nil, 0)
	return nil
}

func (c *CollateralToken) setParams(
	virtualSupply, virtualBalance *uint256.Int, reserveRatio uint32,
) {
	c.VirtualSupply = cloneOrZero(virtualSupply)
	c.VirtualBalance = cloneOrZero(virtualBalance)
	c.ReserveRatio = reserveRatio
}

func isValidReserveRatio(ratio uint32) bool {
	return ratio > 0 && ratio <= RatioBase
}

func cloneOrZero(n *uint256.Int) *uint256.Int {
	if n == nil {
		return new(uint256.Int)
	}
	return n.Clone()
}
