package inmemory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

var (
	ctx        = context.Background()
	collateral = common.HexToAddress("0x00000000000000000000000000000000000000c0")
)

func newMarketMaker(t *testing.T) *domain.MarketMaker {
	mm, err := domain.NewMarketMaker(
		common.HexToAddress("0xa1"), common.HexToAddress("0xa2"),
		common.HexToAddress("0xa3"), common.HexToAddress("0xa4"),
		common.HexToAddress("0xb1"),
		uint256.NewInt(domain.PctBase/10), uint256.NewInt(domain.PctBase/10),
		true,
	)
	require.NoError(t, err)
	return mm
}

func TestMarketMakerRepository(t *testing.T) {
	repoManager := inmemory.NewRepoManager()
	repo := repoManager.MarketMakerRepository()

	_, err := repo.GetMarketMaker(ctx)
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	err = repo.UpdateMarketMaker(ctx, func(m *domain.MarketMaker) (*domain.MarketMaker, error) {
		return m, nil
	})
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	mm := newMarketMaker(t)
	require.NoError(t, repo.AddMarketMaker(ctx, mm))
	require.ErrorIs(t, repo.AddMarketMaker(ctx, mm), domain.ErrAlreadyInitialized)

	err = repo.UpdateMarketMaker(ctx, func(m *domain.MarketMaker) (*domain.MarketMaker, error) {
		if err := m.Open(); err != nil {
			return nil, err
		}
		return m, nil
	})
	require.NoError(t, err)

	stored, err := repo.GetMarketMaker(ctx)
	require.NoError(t, err)
	require.True(t, stored.IsOpen())
	require.Equal(t, mm.Beneficiary, stored.Beneficiary)

	// a failing update leaves the stored value untouched.
	err = repo.UpdateMarketMaker(ctx, func(m *domain.MarketMaker) (*domain.MarketMaker, error) {
		m.Beneficiary = common.Address{}
		return nil, m.Open()
	})
	require.ErrorIs(t, err, domain.ErrAlreadyOpen)
	stored, err = repo.GetMarketMaker(ctx)
	require.NoError(t, err)
	require.True(t, stored.IsOpen())
	require.Equal(t, mm.Beneficiary, stored.Beneficiary)
}

func TestCollateralTokenRepository(t *testing.T) {
	repoManager := inmemory.NewRepoManager()
	repo := repoManager.CollateralTokenRepository()

	token, err := repo.GetCollateralToken(ctx, collateral)
	require.NoError(t, err)
	require.False(t, token.IsWhitelisted())
	require.True(t, token.VirtualSupply.IsZero())

	err = repo.UpdateCollateralToken(ctx, collateral, func(c *domain.CollateralToken) (*domain.CollateralToken, error) {
		if err := c.Whitelist(uint256.NewInt(10), uint256.NewInt(20), 100000); err != nil {
			return nil, err
		}
		return c, nil
	})
	require.NoError(t, err)

	token, err = repo.GetCollateralToken(ctx, collateral)
	require.NoError(t, err)
	require.True(t, token.IsWhitelisted())
	require.Equal(t, uint64(10), token.VirtualSupply.Uint64())
	require.Equal(t, uint64(20), token.VirtualBalance.Uint64())

	// returned values are copies.
	token.VirtualSupply.SetUint64(99)
	token, err = repo.GetCollateralToken(ctx, collateral)
	require.NoError(t, err)
	require.Equal(t, uint64(10), token.VirtualSupply.Uint64())

	tokens, err := repo.GetWhitelistedCollateralTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	err = repo.UpdateCollateralToken(ctx, collateral, func(c *domain.CollateralToken) (*domain.CollateralToken, error) {
		if err := c.Remove(); err != nil {
			return nil, err
		}
		return c, nil
	})
	require.NoError(t, err)

	tokens, err = repo.GetWhitelistedCollateralTokens(ctx)
	require.NoError(t, err)
	require.Empty(t, tokens)
}

func TestRepoManagerRollback(t *testing.T) {
	repoManager := inmemory.NewRepoManager()
	unit := uow.NewUnitOfWork(repoManager)
	mm := newMarketMaker(t)

	err := unit.Run(ctx, func(ctx context.Context) error {
		if err := repoManager.MarketMakerRepository().AddMarketMaker(ctx, mm); err != nil {
			return err
		}
		if err := repoManager.CollateralTokenRepository().UpdateCollateralToken(
			ctx, collateral,
			func(c *domain.CollateralToken) (*domain.CollateralToken, error) {
				if err := c.Whitelist(uint256.NewInt(1), uint256.NewInt(1), 1); err != nil {
					return nil, err
				}
				return c, nil
			},
		); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")

	_, err = repoManager.MarketMakerRepository().GetMarketMaker(ctx)
	require.ErrorIs(t, err, domain.ErrNotInitialized)
	token, err := repoManager.CollateralTokenRepository().GetCollateralToken(ctx, collateral)
	require.NoError(t, err)
	require.False(t, token.IsWhitelisted())

	err = unit.Run(ctx, func(ctx context.Context) error {
		return repoManager.MarketMakerRepository().AddMarketMaker(ctx, mm)
	})
	require.NoError(t, err)
	_, err = repoManager.MarketMakerRepository().GetMarketMaker(ctx)
	require.NoError(t, err)
}

func TestRepoManagerSingleTx(t *testing.T) {
	repoManager := inmemory.NewRepoManager()

	tx, err := repoManager.Begin()
	require.NoError(t, err)

	begun := make(chan error)
	go func() {
		tx, err := repoManager.Begin()
		if err == nil {
			err = tx.Rollback()
		}
		begun <- err
	}()

	select {
	case <-begun:
		t.Fatal("tx begun while another one is open")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, tx.Commit())
	select {
	case err := <-begun:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("tx not begun after the open one was committed")
	}
}
