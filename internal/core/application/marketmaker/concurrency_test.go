package marketmaker_test

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain"
)

func TestConcurrentOrders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		badger     bool
		iterations int
	}{
		{"inmemory", false, 200},
		{"badger", true, 30},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, envOpts{
				badger: tt.badger, buyFeePct: tenPercent, sellFeePct: tenPercent,
			})
			faucet := chain.NewFaucet(env.host, nil)
			fundAmount := u("1000000000000000000")
			traders := []common.Address{alice, bob}

			var (
				wg   sync.WaitGroup
				lock sync.Mutex
				errs []error
			)
			addErr := func(err error) {
				lock.Lock()
				defer lock.Unlock()
				errs = append(errs, err)
			}

			for _, trader := range traders {
				trader := trader
				wg.Add(1)
				go func() {
					defer wg.Done()

					for i := 0; i < tt.iterations; i++ {
						bought, err := env.svc.MakeBuyOrder(ctx, marketmaker.BuyOrder{
							Caller:        trader,
							Buyer:         trader,
							Collateral:    env.dai,
							DepositAmount: u("1000000000000000000"),
						})
						if err != nil {
							addErr(err)
							return
						}
						if _, err := env.svc.MakeSellOrder(ctx, marketmaker.SellOrder{
							Caller:     trader,
							Seller:     trader,
							Collateral: env.dai,
							Amount:     new(uint256.Int).Rsh(bought.ReturnAmount, 1),
						}); err != nil {
							addErr(err)
							return
						}
					}
				}()
			}

			wg.Add(1)
			go func() {
				defer wg.Done()

				for i := 0; i < tt.iterations; i++ {
					if err := faucet.Fund(ctx, env.dai, mallory, fundAmount); err != nil {
						addErr(err)
						return
					}
				}
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()

				for i := 0; i < tt.iterations; i++ {
					if _, err := env.svc.StaticPricePPM(ctx, env.dai); err != nil {
						addErr(err)
						return
					}
				}
			}()

			wg.Wait()
			require.Empty(t, errs)

			supply := env.bondSupply(t)
			holdings := new(uint256.Int).Add(
				env.bondBalance(t, alice), env.bondBalance(t, bob),
			)
			require.Equal(t, supply, holdings)
			require.False(t, supply.IsZero())

			// collateral is conserved among traders, reserve and beneficiary.
			total := new(uint256.Int)
			for _, account := range []common.Address{
				alice, bob, env.deployment.Reserve, beneficiary,
			} {
				total.Add(total, env.balanceOf(t, env.dai, account))
			}
			require.Equal(t, new(uint256.Int).Mul(collateralFunds, uint256.NewInt(2)), total)

			funded := new(uint256.Int).Mul(fundAmount, uint256.NewInt(uint64(tt.iterations)))
			require.Equal(
				t, new(uint256.Int).Add(collateralFunds, funded),
				env.balanceOf(t, env.dai, mallory),
			)

			require.Len(t, env.events.list(), 2*len(traders)*tt.iterations)
		})
	}
}
