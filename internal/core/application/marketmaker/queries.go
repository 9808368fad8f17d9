package marketmaker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mathutil"
)

var (
	// ErrUndefinedPrice is returned by StaticPricePPM when the effective supply
	// of the curve is zero.
	ErrUndefinedPrice = errors.New("price is undefined for zero supply")

	ppm = uint256.NewInt(domain.RatioBase)
)

func (s *Service) GetInfo(ctx context.Context) (*Info, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	marketMaker, err := s.getMarketMaker(ctx)
	if err != nil {
		return nil, err
	}
	return infoFromDomain(*marketMaker), nil
}

// GetCollateralToken returns the registry entry of the given collateral, the
// zero-valued one if unknown.
func (s *Service) GetCollateralToken(
	ctx context.Context, collateral common.Address,
) (*domain.CollateralToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.repoManager.CollateralTokenRepository().
		GetCollateralToken(ctx, collateral)
}

func (s *Service) ListCollateralTokens(
	ctx context.Context,
) ([]domain.CollateralToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.repoManager.CollateralTokenRepository().
		GetWhitelistedCollateralTokens(ctx)
}

// PreviewBuyOrder returns the outcome of buying with the given deposit at the
// current state, without executing the order.
func (s *Service) PreviewBuyOrder(
	ctx context.Context, collateral common.Address, depositAmount *uint256.Int,
) (*OrderResult, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if depositAmount == nil || depositAmount.IsZero() {
		return nil, domain.ErrInvalidCollateralValue
	}
	oc, err := s.newOrderContext(ctx, collateral)
	if err != nil {
		return nil, err
	}
	supply, balance, err := oc.curveState(ctx)
	if err != nil {
		return nil, err
	}
	return quoteBuy(
		oc.pricer, oc.marketMaker.BuyFeePct, supply, balance, depositAmount,
	)
}

// PreviewSellOrder returns the outcome of selling the given amount of bonded
// tokens at the current state, without executing the order.
func (s *Service) PreviewSellOrder(
	ctx context.Context, collateral common.Address, amount *uint256.Int,
) (*OrderResult, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if amount == nil || amount.IsZero() {
		return nil, domain.ErrInvalidBondAmount
	}
	oc, err := s.newOrderContext(ctx, collateral)
	if err != nil {
		return nil, err
	}
	supply, balance, err := oc.curveState(ctx)
	if err != nil {
		return nil, err
	}
	supplyAfterBurn, err := mathutil.Sub(supply, amount)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: supply is %s", domain.ErrInvalidBondAmount, supply.Dec(),
		)
	}
	return quoteSell(
		oc.pricer, oc.marketMaker.SellFeePct, supplyAfterBurn, balance, amount,
	)
}

// StaticPricePPM returns the spot price of the bonded token in collateral,
// in parts per million: PPM * PPM * balance / (supply * reserveRatio), with
// supply and balance including their virtual offsets.
func (s *Service) StaticPricePPM(
	ctx context.Context, collateral common.Address,
) (*uint256.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	oc, err := s.newOrderContext(ctx, collateral)
	if err != nil {
		return nil, err
	}
	supply, balance, err := oc.curveState(ctx)
	if err != nil {
		return nil, err
	}
	effSupply, effBalance, err := oc.pricer.effective(supply, balance)
	if err != nil {
		return nil, err
	}

	denominator, overflow := new(uint256.Int).MulOverflow(
		effSupply, uint256.NewInt(uint64(oc.collateral.ReserveRatio)),
	)
	if overflow {
		return nil, domain.ErrMathOverflow
	}
	if denominator.IsZero() {
		return nil, ErrUndefinedPrice
	}
	return mathutil.MulDiv(
		effBalance, new(uint256.Int).Mul(ppm, ppm), denominator,
	)
}
