package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mathutil"
)

const (
	// RatioBase is the base of reserve ratios, expressed in parts per million.
	RatioBase = 1_000_000
	// PctBase is the base of fee percentages, 10^18 stands for 100%.
	PctBase = mathutil.PctBase

	// MarketMakerEntity is the resource every market maker permission refers to.
	MarketMakerEntity = "marketmaker"
)

// NativeAsset is the sentinel collateral identifier of the chain's native
// asset. Any other identifier refers to a fungible token contract.
var NativeAsset = common.Address{}
