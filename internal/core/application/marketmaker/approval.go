package marketmaker

import (
	"context"
	"fmt"

	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mmabi"
)

// ReceiveApproval executes the buy order embedded in the approval callback of
// a collateral token. The order must buy for the approving account, with the
// calling token as collateral and the whole approved amount as deposit. The
// approving account pays the deposit and must hold the buy permission.
func (s *Service) ReceiveApproval(
	ctx context.Context, approval Approval,
) (*OrderResult, error) {
	var result *OrderResult
	if err := s.run(ctx, func(ctx context.Context) ([]domain.Event, error) {
		order, err := mmabi.DecodeMakeBuyOrder(approval.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotBuyFunction, err)
		}
		if order.Trader != approval.From {
			return nil, domain.ErrBuyerNotFrom
		}
		if order.Collateral != approval.Token {
			return nil, domain.ErrCollateralNotSender
		}
		if approval.Amount == nil || !order.Amount.Eq(approval.Amount) {
			return nil, domain.ErrDepositNotAmount
		}
		if !s.acl.HasPermission(
			ctx, approval.From, domain.MarketMakerEntity, domain.MakeBuyOrderRole,
		) {
			return nil, fmt.Errorf(
				"%w: %s", domain.ErrNoPermission, approval.From.Hex(),
			)
		}

		r, event, err := s.makeBuyOrder(ctx, BuyOrder{
			Caller:          approval.From,
			Buyer:           order.Trader,
			Collateral:      order.Collateral,
			DepositAmount:   order.Amount,
			MinReturnAmount: order.MinReturn,
		}, approval.From, false)
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
