package marketmaker_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mmabi"
)

func TestReceiveApproval(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOpts{buyFeePct: tenPercent})
	deposit := u("1000000000000000000")
	data, err := mmabi.PackMakeBuyOrder(mmabi.Order{
		Trader:     alice,
		Collateral: env.dai,
		Amount:     deposit,
		MinReturn:  u("899963552077514442"),
	})
	require.NoError(t, err)

	result, err := env.svc.ReceiveApproval(ctx, marketmaker.Approval{
		Token:  env.dai,
		From:   alice,
		Amount: deposit,
		Data:   data,
	})
	require.NoError(t, err)
	require.Equal(t, u("899963552077514442"), result.ReturnAmount)
	require.Equal(t, result.ReturnAmount, env.bondBalance(t, alice))

	// the approving account paid the deposit.
	paid := new(uint256.Int).Sub(collateralFunds, env.balanceOf(t, env.dai, alice))
	require.Equal(t, deposit, paid)
	require.Len(t, env.events.list(), 1)
	require.Equal(t, domain.EventMakeBuyOrder, env.events.list()[0].Type())
}

func TestFailingReceiveApproval(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOpts{})
	deposit := u("1000000000000000000")

	pack := func(order mmabi.Order) []byte {
		data, err := mmabi.PackMakeBuyOrder(order)
		require.NoError(t, err)
		return data
	}
	validOrder := func() mmabi.Order {
		return mmabi.Order{
			Trader:     alice,
			Collateral: env.dai,
			Amount:     deposit,
			MinReturn:  uint256.NewInt(0),
		}
	}
	sellData, err := mmabi.PackMakeSellOrder(validOrder())
	require.NoError(t, err)

	tests := []struct {
		name          string
		approval      marketmaker.Approval
		expectedError error
	}{
		{
			name: "payload is a sell order",
			approval: marketmaker.Approval{
				Token: env.dai, From: alice, Amount: deposit, Data: sellData,
			},
			expectedError: domain.ErrNotBuyFunction,
		},
		{
			name: "empty payload",
			approval: marketmaker.Approval{
				Token: env.dai, From: alice, Amount: deposit,
			},
			expectedError: domain.ErrNotBuyFunction,
		},
		{
			name: "buyer is not the approving account",
			approval: marketmaker.Approval{
				Token: env.dai, From: bob, Amount: deposit, Data: pack(validOrder()),
			},
			expectedError: domain.ErrBuyerNotFrom,
		},
		{
			name: "collateral is not the calling token",
			approval: marketmaker.Approval{
				Token: env.deployment.Token, From: alice, Amount: deposit,
				Data: pack(validOrder()),
			},
			expectedError: domain.ErrCollateralNotSender,
		},
		{
			name: "deposit is not the approved amount",
			approval: marketmaker.Approval{
				Token: env.dai, From: alice, Amount: uint256.NewInt(1),
				Data: pack(validOrder()),
			},
			expectedError: domain.ErrDepositNotAmount,
		},
		{
			name: "approving account without permission",
			approval: marketmaker.Approval{
				Token: env.dai, From: mallory, Amount: deposit,
				Data: pack(func() mmabi.Order {
					o := validOrder()
					o.Trader = mallory
					return o
				}()),
			},
			expectedError: domain.ErrNoPermission,
		},
		{
			name: "slippage",
			approval: marketmaker.Approval{
				Token: env.dai, From: alice, Amount: deposit,
				Data: pack(func() mmabi.Order {
					o := validOrder()
					o.MinReturn = deposit
					return o
				}()),
			},
			expectedError: domain.ErrSlippageExceedsLimit,
		},
	}

	for _, tt := range tests {
		_, err := env.svc.ReceiveApproval(ctx, tt.approval)
		require.ErrorIs(t, err, tt.expectedError, tt.name)
	}

	require.True(t, env.bondSupply(t).IsZero())
	require.Equal(t, collateralFunds, env.balanceOf(t, env.dai, alice))
	require.Empty(t, env.events.list())
}

func TestReceiveApprovalGated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOpts{gated: true})
	deposit := u("1000000000000000000")
	data, err := mmabi.PackMakeBuyOrder(mmabi.Order{
		Trader:     alice,
		Collateral: env.dai,
		Amount:     deposit,
		MinReturn:  uint256.NewInt(0),
	})
	require.NoError(t, err)

	_, err = env.svc.ReceiveApproval(ctx, marketmaker.Approval{
		Token: env.dai, From: alice, Amount: deposit, Data: data,
	})
	require.ErrorIs(t, err, domain.ErrNotOpen)
}
