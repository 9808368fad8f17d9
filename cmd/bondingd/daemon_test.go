package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/config"
)

const admin = "0x00000000000000000000000000000000000000ad"

func TestDaemon(t *testing.T) {
	ctx := context.Background()
	datadir := t.TempDir()
	t.Setenv("BONDING_DATADIR", datadir)
	t.Setenv("BONDING_ADMIN_ACCOUNT", admin)
	t.Setenv("BONDING_COLLATERALS", "DAI,USDC")
	t.Setenv("BONDING_VIRTUAL_SUPPLY", "100000000000000000000000")
	t.Setenv("BONDING_VIRTUAL_BALANCE", "10000000000000000000000")
	t.Setenv("BONDING_BUY_FEE_PCT", "100000000000000000")
	t.Setenv("BONDING_FAUCET_MAX_AMOUNT", "1000000000000000000000")
	require.NoError(t, config.InitConfig())

	d, err := newDaemon(ctx)
	require.NoError(t, err)

	info, err := d.marketMaker.GetInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, d.deployment.Token, info.Token)
	require.Equal(t, d.deployment.TokenManager, info.TokenManager)
	require.Equal(t, d.deployment.Reserve, info.Reserve)
	require.Equal(t, d.deployment.Formula, info.Formula)
	require.Equal(t, config.GetBeneficiary(), info.Beneficiary)
	require.Equal(t, "100000000000000000", info.BuyFeePct.Dec())
	require.True(t, info.SellFeePct.IsZero())
	require.True(t, info.Open)

	collaterals, err := d.marketMaker.ListCollateralTokens(ctx)
	require.NoError(t, err)
	require.Len(t, collaterals, 2)
	for _, c := range collaterals {
		require.Equal(t, "100000000000000000000000", c.VirtualSupply.Dec())
		require.Equal(t, uint32(100000), c.ReserveRatio)
	}

	token, err := os.ReadFile(filepath.Join(datadir, config.AdminTokenFile))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	deployment := d.deployment
	d.close()

	// A restart reuses the deployed contracts and the persisted state.
	d, err = newDaemon(ctx)
	require.NoError(t, err)
	defer d.close()

	require.Equal(t, deployment, d.deployment)
	collaterals, err = d.marketMaker.ListCollateralTokens(ctx)
	require.NoError(t, err)
	require.Len(t, collaterals, 2)
}

func TestGatedInMemoryDaemon(t *testing.T) {
	ctx := context.Background()
	t.Setenv("BONDING_DATADIR", t.TempDir())
	t.Setenv("BONDING_ADMIN_ACCOUNT", admin)
	t.Setenv("BONDING_DB_TYPE", config.DBInMemory)
	t.Setenv("BONDING_GATED", "true")
	require.NoError(t, config.InitConfig())

	d, err := newDaemon(ctx)
	require.NoError(t, err)
	defer d.close()

	info, err := d.marketMaker.GetInfo(ctx)
	require.NoError(t, err)
	require.True(t, info.Gated)
	require.False(t, info.Open)

	collaterals, err := d.marketMaker.ListCollateralTokens(ctx)
	require.NoError(t, err)
	require.Len(t, collaterals, 1)
	require.Equal(t, d.deployment.Collaterals["DAI"], collaterals[0].Address)
}
