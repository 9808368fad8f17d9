package marketmaker

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mathutil"
)

// MakeBuyOrder mints bonded tokens to the buyer in exchange of the deposit
// of collateral paid by the caller. The fee goes to the beneficiary, the rest
// to the reserve. Nothing changes if the order returns less than
// MinReturnAmount.
func (s *Service) MakeBuyOrder(
	ctx context.Context, order BuyOrder,
) (*OrderResult, error) {
	var result *OrderResult
	if err := s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		r, event, err := s.makeBuyOrder(ctx, order, order.Caller, true)
		if err != nil {
			return nil, err
		}
		result = r
		return []domain.Event{event}, nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// MakeSellOrder burns the seller's bonded tokens and pays out the collateral
// they are worth, net of the fee. The burn is undone if the order fails.
func (s *Service) MakeSellOrder(
	ctx context.Context, order SellOrder,
) (*OrderResult, error) {
	var result *OrderResult
	if err := s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		r, event, err := s.makeSellOrder(ctx, order)
		if err != nil {
			return nil, err
		}
		result = r
		return []domain.Event{event}, nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) makeBuyOrder(
	ctx context.Context, order BuyOrder, payer common.Address, checkAuth bool,
) (*OrderResult, domain.Event, error) {
	marketMaker, err := s.getMarketMaker(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !marketMaker.IsOpen() {
		return nil, nil, domain.ErrNotOpen
	}
	if checkAuth {
		if err := s.authorize(ctx, order.Caller, domain.MakeBuyOrderRole); err != nil {
			return nil, nil, err
		}
	}
	collateral, err := s.getWhitelistedCollateral(ctx, order.Collateral)
	if err != nil {
		return nil, nil, err
	}
	if err := validateCollateralValue(
		collateral, order.DepositAmount, order.Value,
	); err != nil {
		return nil, nil, err
	}

	collabs, err := s.collaborators(ctx, marketMaker)
	if err != nil {
		return nil, nil, err
	}
	supply, balance, err := collabs.curveStateOf(ctx, collateral.Address)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.newPricer(ctx, marketMaker, collateral)
	if err != nil {
		return nil, nil, err
	}
	result, err := quoteBuy(
		p, marketMaker.BuyFeePct, supply, balance, order.DepositAmount,
	)
	if err != nil {
		return nil, nil, err
	}
	if err := checkSlippage(result.ReturnAmount, order.MinReturnAmount); err != nil {
		return nil, nil, err
	}

	bank := s.host.Bank()
	if !result.Fee.IsZero() {
		if err := bank.Transfer(
			ctx, collateral.Address, payer, marketMaker.Beneficiary, result.Fee,
		); err != nil {
			return nil, nil, fmt.Errorf("transferring fee: %w", err)
		}
	}
	if err := bank.Transfer(
		ctx, collateral.Address, payer, collabs.reserve.Address(), result.NetAmount,
	); err != nil {
		return nil, nil, fmt.Errorf("transferring deposit to reserve: %w", err)
	}
	if err := collabs.tokenManager.Mint(
		ctx, order.Buyer, result.ReturnAmount,
	); err != nil {
		return nil, nil, fmt.Errorf("minting bonded tokens: %w", err)
	}

	result.Trader = order.Buyer
	event := domain.MakeBuyOrderEvent{
		Buyer:         order.Buyer,
		Collateral:    collateral.Address,
		DepositAmount: result.Amount.Clone(),
		Fee:           result.Fee.Clone(),
		ReturnAmount:  result.ReturnAmount.Clone(),
		FeePct:        result.FeePct.Clone(),
	}
	return result, event, nil
}

func (s *Service) makeSellOrder(
	ctx context.Context, order SellOrder,
) (*OrderResult, domain.Event, error) {
	marketMaker, err := s.getMarketMaker(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !marketMaker.IsOpen() {
		return nil, nil, domain.ErrNotOpen
	}
	if err := s.authorize(ctx, order.Caller, domain.MakeSellOrderRole); err != nil {
		return nil, nil, err
	}
	collateral, err := s.getWhitelistedCollateral(ctx, order.Collateral)
	if err != nil {
		return nil, nil, err
	}

	collabs, err := s.collaborators(ctx, marketMaker)
	if err != nil {
		return nil, nil, err
	}
	if order.Amount == nil || order.Amount.IsZero() {
		return nil, nil, domain.ErrInvalidBondAmount
	}
	sellerBalance, err := collabs.tokenManager.BalanceOf(ctx, order.Seller)
	if err != nil {
		return nil, nil, err
	}
	if sellerBalance.Lt(order.Amount) {
		return nil, nil, fmt.Errorf(
			"%w: seller holds %s, selling %s",
			domain.ErrInvalidBondAmount, sellerBalance.Dec(), order.Amount.Dec(),
		)
	}

	// the curve is priced against the supply net of the sold tokens.
	if err := collabs.tokenManager.Burn(ctx, order.Seller, order.Amount); err != nil {
		return nil, nil, fmt.Errorf("burning bonded tokens: %w", err)
	}
	supply, balance, err := collabs.curveStateOf(ctx, collateral.Address)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.newPricer(ctx, marketMaker, collateral)
	if err != nil {
		return nil, nil, err
	}
	result, err := quoteSell(
		p, marketMaker.SellFeePct, supply, balance, order.Amount,
	)
	if err != nil {
		return nil, nil, err
	}
	if err := checkSlippage(result.ReturnAmount, order.MinReturnAmount); err != nil {
		return nil, nil, err
	}

	if err := collabs.reserve.Transfer(
		ctx, collateral.Address, order.Seller, result.ReturnAmount,
	); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrReserveTransferFailed, err)
	}
	if !result.Fee.IsZero() {
		if err := collabs.reserve.Transfer(
			ctx, collateral.Address, marketMaker.Beneficiary, result.Fee,
		); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrReserveTransferFailed, err)
		}
	}

	result.Trader = order.Seller
	event := domain.MakeSellOrderEvent{
		Seller:       order.Seller,
		Collateral:   collateral.Address,
		SellAmount:   result.Amount.Clone(),
		Fee:          result.Fee.Clone(),
		ReturnAmount: result.ReturnAmount.Clone(),
		FeePct:       result.FeePct.Clone(),
	}
	return result, event, nil
}

func (s *Service) getWhitelistedCollateral(
	ctx context.Context, address common.Address,
) (*domain.CollateralToken, error) {
	collateral, err := s.repoManager.CollateralTokenRepository().
		GetCollateralToken(ctx, address)
	if err != nil {
		return nil, err
	}
	if !collateral.IsWhitelisted() {
		return nil, domain.ErrCollateralNotWhitelisted
	}
	return collateral, nil
}

// quoteBuy prices a deposit of collateral. The deposit is not yet part of the
// given reserve balance.
func quoteBuy(
	p *pricer, feePct, supply, balance, depositAmount *uint256.Int,
) (*OrderResult, error) {
	netAmount, fee, err := mathutil.LessFee(depositAmount, feePct)
	if err != nil {
		return nil, err
	}
	returnAmount, err := p.purchaseReturn(supply, balance, netAmount)
	if err != nil {
		return nil, err
	}
	return &OrderResult{
		Collateral:   p.collateral.Address,
		Amount:       depositAmount.Clone(),
		Fee:          fee,
		NetAmount:    netAmount,
		ReturnAmount: returnAmount,
		FeePct:       feePct.Clone(),
	}, nil
}

// quoteSell prices a sale of bonded tokens. The given supply is already net
// of sellAmount.
func quoteSell(
	p *pricer, feePct, supply, balance, sellAmount *uint256.Int,
) (*OrderResult, error) {
	grossReturn, err := p.saleReturn(supply, balance, sellAmount)
	if err != nil {
		return nil, err
	}
	netReturn, fee, err := mathutil.LessFee(grossReturn, feePct)
	if err != nil {
		return nil, err
	}
	return &OrderResult{
		Collateral:   p.collateral.Address,
		Amount:       sellAmount.Clone(),
		Fee:          fee,
		NetAmount:    grossReturn,
		ReturnAmount: netReturn,
		FeePct:       feePct.Clone(),
	}, nil
}

func validateCollateralValue(
	collateral *domain.CollateralToken, depositAmount, value *uint256.Int,
) error {
	if depositAmount == nil || depositAmount.IsZero() {
		return domain.ErrInvalidCollateralValue
	}
	if collateral.IsNative() {
		if value == nil || !value.Eq(depositAmount) {
			return fmt.Errorf(
				"%w: value must equal deposit amount", domain.ErrInvalidCollateralValue,
			)
		}
		return nil
	}
	if value != nil && !value.IsZero() {
		return fmt.Errorf(
			"%w: value must be zero for token collaterals",
			domain.ErrInvalidCollateralValue,
		)
	}
	return nil
}

func checkSlippage(returnAmount, minReturnAmount *uint256.Int) error {
	if minReturnAmount != nil && returnAmount.Lt(minReturnAmount) {
		return fmt.Errorf(
			"%w: got %s, min %s",
			domain.ErrSlippageExceedsLimit, returnAmount.Dec(), minReturnAmount.Dec(),
		)
	}
	return nil
}
