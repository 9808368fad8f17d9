package marketmaker

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

// Open makes a gated market maker accept orders.
func (s *Service) Open(ctx context.Context, caller common.Address) error {
	return s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if _, err := s.getMarketMaker(ctx); err != nil {
			return nil, err
		}
		if err := s.authorize(ctx, caller, domain.OpenRole); err != nil {
			return nil, err
		}

		if err := s.repoManager.MarketMakerRepository().UpdateMarketMaker(
			ctx, func(m *domain.MarketMaker) (*domain.MarketMaker, error) {
				if err := m.Open(); err != nil {
					return nil, err
				}
				return m, nil
			},
		); err != nil {
			return nil, err
		}
		return []domain.Event{domain.OpenEvent{}}, nil
	})
}

// AddCollateralToken whitelists a collateral with the given curve params.
func (s *Service) AddCollateralToken(
	ctx context.Context, caller common.Address, args CollateralArgs,
) error {
	return s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.checkAdmin(ctx, caller, domain.ManageCollateralTokenRole); err != nil {
			return nil, err
		}

		if err := s.repoManager.CollateralTokenRepository().UpdateCollateralToken(
			ctx, args.Collateral,
			func(c *domain.CollateralToken) (*domain.CollateralToken, error) {
				if err := c.Whitelist(
					args.VirtualSupply, args.VirtualBalance, args.ReserveRatio,
				); err != nil {
					return nil, err
				}
				if c.IsNative() {
					return c, nil
				}
				ok, err := s.isContract(ctx, args.Collateral)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, fmt.Errorf(
						"%w: collateral %s", domain.ErrNotAContract, args.Collateral.Hex(),
					)
				}
				return c, nil
			},
		); err != nil {
			return nil, err
		}

		return []domain.Event{domain.AddCollateralTokenEvent{
			Collateral:     args.Collateral,
			VirtualSupply:  cloneOrZero(args.VirtualSupply),
			VirtualBalance: cloneOrZero(args.VirtualBalance),
			ReserveRatio:   args.ReserveRatio,
		}}, nil
	})
}

// UpdateCollateralToken overwrites the curve params of a collateral.
func (s *Service) UpdateCollateralToken(
	ctx context.Context, caller common.Address, args CollateralArgs,
) error {
	return s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.checkAdmin(ctx, caller, domain.ManageCollateralTokenRole); err != nil {
			return nil, err
		}

		if err := s.repoManager.CollateralTokenRepository().UpdateCollateralToken(
			ctx, args.Collateral,
			func(c *domain.CollateralToken) (*domain.CollateralToken, error) {
				if err := c.Update(
					args.VirtualSupply, args.VirtualBalance, args.ReserveRatio,
				); err != nil {
					return nil, err
				}
				return c, nil
			},
		); err != nil {
			return nil, err
		}

		return []domain.Event{domain.UpdateCollateralTokenEvent{
			Collateral:     args.Collateral,
			VirtualSupply:  cloneOrZero(args.VirtualSupply),
			VirtualBalance: cloneOrZero(args.VirtualBalance),
			ReserveRatio:   args.ReserveRatio,
		}}, nil
	})
}

// RemoveCollateralToken un-whitelists a collateral. Its record is zeroed but
// kept.
func (s *Service) RemoveCollateralToken(
	ctx context.Context, caller, collateral common.Address,
) error {
	return s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.checkAdmin(ctx, caller, domain.ManageCollateralTokenRole); err != nil {
			return nil, err
		}

		if err := s.repoManager.CollateralTokenRepository().UpdateCollateralToken(
			ctx, collateral,
			func(c *domain.CollateralToken) (*domain.CollateralToken, error) {
				if err := c.Remove(); err != nil {
					return nil, err
				}
				return c, nil
			},
		); err != nil {
			return nil, err
		}

		return []domain.Event{
			domain.RemoveCollateralTokenEvent{Collateral: collateral},
		}, nil
	})
}

func (s *Service) UpdateBeneficiary(
	ctx context.Context, caller, beneficiary common.Address,
) error {
	return s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.checkAdmin(ctx, caller, domain.UpdateBeneficiaryRole); err != nil {
			return nil, err
		}

		if err := s.repoManager.MarketMakerRepository().UpdateMarketMaker(
			ctx, func(m *domain.MarketMaker) (*domain.MarketMaker, error) {
				if err := m.ChangeBeneficiary(beneficiary); err != nil {
					return nil, err
				}
				return m, nil
			},
		); err != nil {
			return nil, err
		}

		return []domain.Event{
			domain.UpdateBeneficiaryEvent{Beneficiary: beneficiary},
		}, nil
	})
}

// UpdateFormula changes the formula orders are priced with. It must be a
// contract.
func (s *Service) UpdateFormula(
	ctx context.Context, caller, formula common.Address,
) error {
	return s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.checkAdmin(ctx, caller, domain.UpdateFormulaRole); err != nil {
			return nil, err
		}

		ok, err := s.isContract(ctx, formula)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf(
				"%w: formula %s", domain.ErrNotAContract, formula.Hex(),
			)
		}

		if err := s.repoManager.MarketMakerRepository().UpdateMarketMaker(
			ctx, func(m *domain.MarketMaker) (*domain.MarketMaker, error) {
				m.ChangeFormula(formula)
				return m, nil
			},
		); err != nil {
			return nil, err
		}

		return []domain.Event{domain.UpdateFormulaEvent{Formula: formula}}, nil
	})
}

func (s *Service) UpdateFees(
	ctx context.Context, caller common.Address, buyFeePct, sellFeePct *uint256.Int,
) error {
	return s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if err := s.checkAdmin(ctx, caller, domain.UpdateFeesRole); err != nil {
			return nil, err
		}

		if err := s.repoManager.MarketMakerRepository().UpdateMarketMaker(
			ctx, func(m *domain.MarketMaker) (*domain.MarketMaker, error) {
				if err := m.ChangeFees(buyFeePct, sellFeePct); err != nil {
					return nil, err
				}
				return m, nil
			},
		); err != nil {
			return nil, err
		}

		return []domain.Event{domain.UpdateFeesEvent{
			BuyFeePct:  buyFeePct.Clone(),
			SellFeePct: sellFeePct.Clone(),
		}}, nil
	})
}

// checkAdmin makes sure the market maker is initialized and caller holds
// role.
func (s *Service) checkAdmin(
	ctx context.Context, caller common.Address, role string,
) error {
	if _, err := s.getMarketMaker(ctx); err != nil {
		return err
	}
	return s.authorize(ctx, caller, role)
}

func cloneOrZero(n *uint256.Int) *uint256.Int {
	if n == nil {
		return new(uint256.Int)
	}
	return n.Clone()
}
