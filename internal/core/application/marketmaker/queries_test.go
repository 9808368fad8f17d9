package marketmaker_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

func TestStaticPricePPM(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOpts{})

	price, err := env.svc.StaticPricePPM(ctx, env.dai)
	require.NoError(t, err)
	require.Equal(t, uint64(domain.RatioBase), price.Uint64())

	env.buy(t, alice, u("1000000000000000000"))
	newPrice, err := env.svc.StaticPricePPM(ctx, env.dai)
	require.NoError(t, err)
	require.True(t, newPrice.Gt(price))
}

func TestFailingStaticPricePPM(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOpts{})
	unknown := common.HexToAddress("0x0000000000000000000000000000000000000bad")

	_, err := env.svc.StaticPricePPM(ctx, unknown)
	require.ErrorIs(t, err, domain.ErrCollateralNotWhitelisted)

	// no virtual supply and nothing minted yet.
	err = env.svc.AddCollateralToken(ctx, admin, marketmaker.CollateralArgs{
		Collateral:     domain.NativeAsset,
		VirtualBalance: uint256.NewInt(1),
		ReserveRatio:   reserveRatio,
	})
	require.NoError(t, err)
	_, err = env.svc.StaticPricePPM(ctx, domain.NativeAsset)
	require.ErrorIs(t, err, marketmaker.ErrUndefinedPrice)
}

func TestPreviewOrders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOpts{buyFeePct: tenPercent, sellFeePct: tenPercent})
	deposit := u("1000000000000000000")

	preview, err := env.svc.PreviewBuyOrder(ctx, env.dai, deposit)
	require.NoError(t, err)
	require.Empty(t, env.events.list())

	result := env.buy(t, alice, deposit)
	require.Equal(t, preview.ReturnAmount, result.ReturnAmount)
	require.Equal(t, preview.Fee, result.Fee)

	sellPreview, err := env.svc.PreviewSellOrder(ctx, env.dai, result.ReturnAmount)
	require.NoError(t, err)
	require.Equal(t, result.ReturnAmount, env.bondBalance(t, alice))

	sold, err := env.svc.MakeSellOrder(ctx, marketmaker.SellOrder{
		Caller:     alice,
		Seller:     alice,
		Collateral: env.dai,
		Amount:     result.ReturnAmount,
	})
	require.NoError(t, err)
	require.Equal(t, sellPreview.ReturnAmount, sold.ReturnAmount)
	require.Equal(t, sellPreview.Fee, sold.Fee)
}

func TestFailingPreviewOrders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOpts{})
	unknown := common.HexToAddress("0x0000000000000000000000000000000000000bad")

	tests := []struct {
		name        string
		preview     func() (*marketmaker.OrderResult, error)
		expectedErr error
	}{
		{
			name: "buy with zero deposit",
			preview: func() (*marketmaker.OrderResult, error) {
				return env.svc.PreviewBuyOrder(ctx, env.dai, uint256.NewInt(0))
			},
			expectedErr: domain.ErrInvalidCollateralValue,
		},
		{
			name: "buy with unknown collateral",
			preview: func() (*marketmaker.OrderResult, error) {
				return env.svc.PreviewBuyOrder(ctx, unknown, uint256.NewInt(1))
			},
			expectedErr: domain.ErrCollateralNotWhitelisted,
		},
		{
			name: "sell zero",
			preview: func() (*marketmaker.OrderResult, error) {
				return env.svc.PreviewSellOrder(ctx, env.dai, uint256.NewInt(0))
			},
			expectedErr: domain.ErrInvalidBondAmount,
		},
		{
			name: "sell more than supply",
			preview: func() (*marketmaker.OrderResult, error) {
				return env.svc.PreviewSellOrder(ctx, env.dai, uint256.NewInt(1))
			},
			expectedErr: domain.ErrInvalidBondAmount,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.preview()
			require.ErrorIs(t, err, tt.expectedErr)
			require.Nil(t, res)
		})
	}
}
