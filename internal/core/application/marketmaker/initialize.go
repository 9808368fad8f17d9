package marketmaker

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

// Initialize sets up the market maker. It can be called only once.
func (s *Service) Initialize(ctx context.Context, args InitArgs) error {
	var marketMaker *domain.MarketMaker
	if err := s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		if _, err := s.getMarketMaker(ctx); err == nil {
			return nil, domain.ErrAlreadyInitialized
		} else if !errors.Is(err, domain.ErrNotInitialized) {
			return nil, err
		}

		if ok, err := s.isContract(ctx, args.TokenManager); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf(
				"%w: token manager %s", domain.ErrContractIsEOA, args.TokenManager.Hex(),
			)
		}
		tokenManager, err := s.host.TokenManager(ctx, args.TokenManager)
		if err != nil {
			return nil, err
		}
		maxAccountTokens, err := tokenManager.MaxAccountTokens(ctx)
		if err != nil {
			return nil, err
		}
		if !maxAccountTokens.Eq(new(uint256.Int).SetAllOne()) {
			return nil, domain.ErrInvalidTokenManagerSetting
		}

		if ok, err := s.isContract(ctx, args.Formula); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf(
				"%w: formula %s", domain.ErrContractIsEOA, args.Formula.Hex(),
			)
		}
		if ok, err := s.isContract(ctx, args.Reserve); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf(
				"%w: reserve %s", domain.ErrContractIsEOA, args.Reserve.Hex(),
			)
		}

		marketMaker, err = domain.NewMarketMaker(
			tokenManager.Token(), args.TokenManager, args.Reserve, args.Formula,
			args.Beneficiary, args.BuyFeePct, args.SellFeePct, args.Gated,
		)
		if err != nil {
			return nil, err
		}
		if err := s.repoManager.MarketMakerRepository().AddMarketMaker(
			ctx, marketMaker,
		); err != nil {
			return nil, err
		}
		return nil, nil
	}); err != nil {
		return err
	}

	log.Infof(
		"market maker initialized for token %s (gated: %t)",
		marketMaker.Token.Hex(), marketMaker.Gated,
	)
	return nil
}
