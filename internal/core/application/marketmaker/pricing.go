package marketmaker

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/pkg/marketmaking"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mathutil"
)

// pricer forwards the effective supply and balance of a collateral curve to
// the formula. Formula errors are returned unchanged.
type pricer struct {
	formula    marketmaking.MakingFormula
	collateral *domain.CollateralToken
}

func (s *Service) newPricer(
	ctx context.Context,
	marketMaker *domain.MarketMaker, collateral *domain.CollateralToken,
) (*pricer, error) {
	formula, err := s.host.Formula(ctx, marketMaker.Formula)
	if err != nil {
		return nil, fmt.Errorf("resolving formula: %w", err)
	}
	return &pricer{formula, collateral}, nil
}

func (p *pricer) purchaseReturn(
	supply, balance, depositAmount *uint256.Int,
) (*uint256.Int, error) {
	effSupply, effBalance, err := p.effective(supply, balance)
	if err != nil {
		return nil, err
	}
	return p.formula.PurchaseReturn(
		effSupply, effBalance, p.collateral.ReserveRatio, depositAmount,
	)
}

func (p *pricer) saleReturn(
	supply, balance, sellAmount *uint256.Int,
) (*uint256.Int, error) {
	effSupply, effBalance, err := p.effective(supply, balance)
	if err != nil {
		return nil, err
	}
	return p.formula.SaleReturn(
		effSupply, effBalance, p.collateral.ReserveRatio, sellAmount,
	)
}

func (p *pricer) effective(
	supply, balance *uint256.Int,
) (effSupply, effBalance *uint256.Int, err error) {
	if effSupply, err = mathutil.Add(p.collateral.VirtualSupply, supply); err != nil {
		return nil, nil, domain.ErrMathOverflow
	}
	if effBalance, err = mathutil.Add(p.collateral.VirtualBalance, balance); err != nil {
		return nil, nil, domain.ErrMathOverflow
	}
	return effSupply, effBalance, nil
}

type collaborators struct {
	tokenManager ports.TokenManager
	reserve      ports.Reserve
}

func (s *Service) collaborators(
	ctx context.Context, marketMaker *domain.MarketMaker,
) (*collaborators, error) {
	tokenManager, err := s.host.TokenManager(ctx, marketMaker.TokenManager)
	if err != nil {
		return nil, fmt.Errorf("resolving token manager: %w", err)
	}
	reserve, err := s.host.Reserve(ctx, marketMaker.Reserve)
	if err != nil {
		return nil, fmt.Errorf("resolving reserve: %w", err)
	}
	return &collaborators{tokenManager, reserve}, nil
}

// curveStateOf returns the real supply of the bonded token and the balance of
// the given collateral held by the reserve.
func (c *collaborators) curveStateOf(
	ctx context.Context, collateral common.Address,
) (supply, balance *uint256.Int, err error) {
	if supply, err = c.tokenManager.TotalSupply(ctx); err != nil {
		return nil, nil, err
	}
	if balance, err = c.reserve.Balance(ctx, collateral); err != nil {
		return nil, nil, err
	}
	return supply, balance, nil
}

// orderContext gathers what pricing an order of a whitelisted collateral
// needs.
type orderContext struct {
	marketMaker *domain.MarketMaker
	collateral  *domain.CollateralToken
	*collaborators
	pricer *pricer
}

func (s *Service) newOrderContext(
	ctx context.Context, collateral common.Address,
) (*orderContext, error) {
	marketMaker, err := s.getMarketMaker(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.getWhitelistedCollateral(ctx, collateral)
	if err != nil {
		return nil, err
	}
	collabs, err := s.collaborators(ctx, marketMaker)
	if err != nil {
		return nil, err
	}
	p, err := s.newPricer(ctx, marketMaker, c)
	if err != nil {
		return nil, err
	}
	return &orderContext{marketMaker, c, collabs, p}, nil
}

func (oc *orderContext) curveState(
	ctx context.Context,
) (supply, balance *uint256.Int, err error) {
	return oc.curveStateOf(ctx, oc.collateral.Address)
}
