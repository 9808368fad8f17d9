package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MarketMaker defines the singleton configuration of the bonding curve market
// maker. TokenManager and Reserve can't change once initialized.
type MarketMaker struct {
	// Token is the bonded token minted and burnt by TokenManager.
	Token        common.Address
	TokenManager common.Address
	Reserve      common.Address
	Formula      common.Address
	// Beneficiary receives the fees of both buy and sell orders.
	Beneficiary common.Address
	// Fees are expressed as fractions of PctBase.
	BuyFeePct  *uint256.Int
	SellFeePct *uint256.Int
	// Gated market makers start closed and must be opened before accepting
	// orders, the others are open right after initialization.
	Gated  bool
	Opened bool
}

// NewMarketMaker returns a new market maker with the given references,
// beneficiary and fees. Contract checks on the references are left to the
// caller since they need access to the host.
func NewMarketMaker(
	token, tokenManager, reserve, formula, beneficiary common.Address,
	buyFeePct, sellFeePct *uint256.Int, gated bool,
) (*MarketMaker, error) {
	if !isValidBeneficiary(beneficiary) {
		return nil, ErrInvalidBeneficiary
	}
	if !isValidPercentage(buyFeePct) || !isValidPercentage(sellFeePct) {
		return nil, ErrInvalidPercentage
	}

	return &MarketMaker{
		Token:        token,
		TokenManager: tokenManager,
		Reserve:      reserve,
		Formula:      formula,
		Beneficiary:  beneficiary,
		BuyFeePct:    buyFeePct.Clone(),
		SellFeePct:   sellFeePct.Clone(),
		Gated:        gated,
		Opened:       !gated,
	}, nil
}

// IsOpen returns true if the market maker is accepting orders.
func (m *MarketMaker) IsOpen() bool {
	return m.Opened
}

// Open makes the market maker accept orders. It can happen only once.
func (m *MarketMaker) Open() error {
	if m.IsOpen() {
		return ErrAlreadyOpen
	}

	m.Opened = true
	return nil
}

// ChangeBeneficiary ...
func (m *MarketMaker) ChangeBeneficiary(beneficiary common.Address) error {
	if !isValidBeneficiary(beneficiary) {
		return ErrInvalidBeneficiary
	}

	m.Beneficiary = beneficiary
	return nil
}

// ChangeFormula ...
func (m *MarketMaker) ChangeFormula(formula common.Address) {
	m.Formula = formula
}

// ChangeFees overwrites both buy and sell fees.
func (m *MarketMaker) ChangeFees(buyFeePct, sellFeePct *uint256.Int) error {
	if !isValidPercentage(buyFeePct) || !isValidPercentage(sellFeePct) {
		return ErrInvalidPercentage
	}

	m.BuyFeePct = buyFeePct.Clone()
	m.SellFeePct = sellFeePct.Clone()
	return nil
}

func isValidBeneficiary(beneficiary common.Address) bool {
	return beneficiary != (common.Address{})
}

func isValidPercentage(pct *uint256.Int) bool {
	return pct != nil && pct.Lt(uint256.NewInt(PctBase))
}
