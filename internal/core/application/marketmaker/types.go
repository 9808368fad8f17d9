package marketmaker

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

// InitArgs are the parameters the market maker is initialized with.
type InitArgs struct {
	TokenManager common.Address
	Formula      common.Address
	Reserve      common.Address
	Beneficiary  common.Address
	BuyFeePct    *uint256.Int
	SellFeePct   *uint256.Int
	// Gated market makers start closed and must be opened.
	Gated bool
}

// CollateralArgs are the curve parameters of a collateral.
type CollateralArgs struct {
	Collateral     common.Address
	VirtualSupply  *uint256.Int
	VirtualBalance *uint256.Int
	ReserveRatio   uint32
}

// BuyOrder is a request to mint bonded tokens to Buyer in exchange of
// DepositAmount collateral paid by Caller. Value is the amount of native
// asset attached to the call.
type BuyOrder struct {
	Caller          common.Address
	Buyer           common.Address
	Collateral      common.Address
	DepositAmount   *uint256.Int
	MinReturnAmount *uint256.Int
	Value           *uint256.Int
}

// SellOrder is a request to burn Amount bonded tokens of Seller in exchange
// of collateral. Caller may sell on behalf of Seller.
type SellOrder struct {
	Caller          common.Address
	Seller          common.Address
	Collateral      common.Address
	Amount          *uint256.Int
	MinReturnAmount *uint256.Int
}

// Approval is the callback of a collateral token notifying that From
// approved Amount tokens to the market maker. Data embeds the order to
// execute.
type Approval struct {
	Token  common.Address
	From   common.Address
	Amount *uint256.Int
	Data   []byte
}

// OrderResult is the outcome of a buy or sell order.
// For buys, Amount is the deposit, NetAmount the part sent to the reserve and
// ReturnAmount the minted tokens.
// For sells, Amount is the burnt tokens, NetAmount the gross collateral
// return and ReturnAmount what the seller received net of Fee.
type OrderResult struct {
	Trader       common.Address
	Collateral   common.Address
	Amount       *uint256.Int
	Fee          *uint256.Int
	NetAmount    *uint256.Int
	ReturnAmount *uint256.Int
	FeePct       *uint256.Int
}

// Info is the configuration of the market maker.
type Info struct {
	Token        common.Address
	TokenManager common.Address
	Formula      common.Address
	Reserve      common.Address
	Beneficiary  common.Address
	BuyFeePct    *uint256.Int
	SellFeePct   *uint256.Int
	Gated        bool
	Open         bool
}

func infoFromDomain(m domain.MarketMaker) *Info {
	return &Info{
		Token:        m.Token,
		TokenManager: m.TokenManager,
		Formula:      m.Formula,
		Reserve:      m.Reserve,
		Beneficiary:  m.Beneficiary,
		BuyFeePct:    m.BuyFeePct.Clone(),
		SellFeePct:   m.SellFeePct.Clone(),
		Gated:        m.Gated,
		Open:         m.IsOpen(),
	}
}
