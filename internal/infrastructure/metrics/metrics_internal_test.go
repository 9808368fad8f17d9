package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

func TestPublisher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dai := common.HexToAddress("0x0000000000000000000000000000000000000da1")
	label := strings.ToLower(dai.Hex())

	p, err := NewPublisher(prometheus.NewRegistry())
	require.NoError(t, err)

	events := []domain.Event{
		domain.OpenEvent{},
		domain.MakeBuyOrderEvent{
			Collateral:    dai,
			DepositAmount: uint256.NewInt(1000),
			Fee:           uint256.NewInt(100),
			ReturnAmount:  uint256.NewInt(50),
			FeePct:        uint256.NewInt(0),
		},
		domain.MakeBuyOrderEvent{
			Collateral:    dai,
			DepositAmount: uint256.NewInt(500),
			Fee:           uint256.NewInt(0),
			ReturnAmount:  uint256.NewInt(20),
		},
		domain.MakeSellOrderEvent{
			Collateral:   dai,
			SellAmount:   uint256.NewInt(30),
			Fee:          uint256.NewInt(10),
			ReturnAmount: uint256.NewInt(90),
		},
	}
	for _, e := range events {
		require.NoError(t, p.PublishEvent(ctx, e))
	}

	require.Equal(t, float64(1), testutil.ToFloat64(p.events.WithLabelValues("Open")))
	require.Equal(t, float64(2), testutil.ToFloat64(p.events.WithLabelValues("MakeBuyOrder")))
	require.Equal(t, float64(2), testutil.ToFloat64(p.orders.WithLabelValues(sideBuy, label)))
	require.Equal(t, float64(1), testutil.ToFloat64(p.orders.WithLabelValues(sideSell, label)))
	require.Equal(t, float64(1500), testutil.ToFloat64(p.collateralVolume.WithLabelValues(sideBuy, label)))
	require.Equal(t, float64(90), testutil.ToFloat64(p.collateralVolume.WithLabelValues(sideSell, label)))
	require.Equal(t, float64(70), testutil.ToFloat64(p.bondVolume.WithLabelValues(sideBuy, label)))
	require.Equal(t, float64(30), testutil.ToFloat64(p.bondVolume.WithLabelValues(sideSell, label)))
	require.Equal(t, float64(100), testutil.ToFloat64(p.fees.WithLabelValues(sideBuy, label)))
	require.Equal(t, float64(10), testutil.ToFloat64(p.fees.WithLabelValues(sideSell, label)))
}

func TestFailingNewPublisher(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPublisher(reg)
	require.NoError(t, err)

	_, err = NewPublisher(reg)
	require.Error(t, err)
}

func TestToFloat(t *testing.T) {
	t.Parallel()

	require.Zero(t, toFloat(nil))
	big, _ := uint256.FromDecimal("1000000000000000000000")
	require.Equal(t, 1e21, toFloat(big))
}
