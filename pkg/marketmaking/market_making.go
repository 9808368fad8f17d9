package marketmaking

import "github.com/holiman/uint256"

// MakingFormula defines the interface for implementing the bonding curve
// formula used to price buy and sell orders.
type MakingFormula interface {
	// PurchaseReturn returns the amount of tokens minted in exchange of
	// depositAmount collateral, given the current supply, reserve balance and
	// reserve ratio (parts per million) of the curve.
	PurchaseReturn(
		supply, balance *uint256.Int, reserveRatio uint32, depositAmount *uint256.Int,
	) (*uint256.Int, error)
	// SaleReturn returns the amount of collateral paid out for sellAmount
	// tokens. supply is net of sellAmount, which is burnt before pricing.
	SaleReturn(
		supply, balance *uint256.Int, reserveRatio uint32, sellAmount *uint256.Int,
	) (*uint256.Int, error)
}
