package marketmaker_test

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain"
	"github.com/tdex-network/tdex-bondingcurve/pkg/marketmaking"
)

// mockHost is a chain host whose formula and reserve can be replaced by
// mocks.
type mockHost struct {
	*chain.Host
	formula marketmaking.MakingFormula
	reserve ports.Reserve
}

func (m *mockHost) Formula(
	ctx context.Context, address common.Address,
) (marketmaking.MakingFormula, error) {
	if m.formula != nil {
		return m.formula, nil
	}
	return m.Host.Formula(ctx, address)
}

func (m *mockHost) Reserve(
	ctx context.Context, address common.Address,
) (ports.Reserve, error) {
	if m.reserve != nil {
		return m.reserve, nil
	}
	return m.Host.Reserve(ctx, address)
}

type mockFormula struct {
	mock.Mock
}

func (m *mockFormula) PurchaseReturn(
	supply, balance *uint256.Int, reserveRatio uint32, depositAmount *uint256.Int,
) (*uint256.Int, error) {
	args := m.Called(supply, balance, reserveRatio, depositAmount)
	var res *uint256.Int
	if a := args.Get(0); a != nil {
		res = a.(*uint256.Int)
	}
	return res, args.Error(1)
}

func (m *mockFormula) SaleReturn(
	supply, balance *uint256.Int, reserveRatio uint32, sellAmount *uint256.Int,
) (*uint256.Int, error) {
	args := m.Called(supply, balance, reserveRatio, sellAmount)
	var res *uint256.Int
	if a := args.Get(0); a != nil {
		res = a.(*uint256.Int)
	}
	return res, args.Error(1)
}

// mockReserve delegates the transfers the mock doesn't fail to the real
// reserve.
type mockReserve struct {
	mock.Mock
	ports.Reserve
}

func (m *mockReserve) Transfer(
	ctx context.Context, collateral, to common.Address, amount *uint256.Int,
) error {
	args := m.Called(ctx, collateral, to, amount)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.Reserve.Transfer(ctx, collateral, to, amount)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishEvent(
	ctx context.Context, event domain.Event,
) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
