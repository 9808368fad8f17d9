package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/config"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	pubsubapp "github.com/tdex-network/tdex-bondingcurve/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/acl"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain"
	chainbadger "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain/badger"
	chaininmemory "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain/inmemory"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/metrics"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/tdex-bondingcurve/internal/interfaces"
	httpinterface "github.com/tdex-network/tdex-bondingcurve/internal/interfaces/http"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

// daemon holds every component of bondingd, ready to be started.
type daemon struct {
	repoManager ports.RepoManager
	host        *chain.Host
	pubsub      ports.PubSub
	registry    *prometheus.Registry
	deployment  *chain.Deployment
	marketMaker *marketmaker.Service
	httpSvc     interfaces.Service
}

// newDaemon wires the daemon components according to the loaded config.
// At first start, it also initializes the market maker and whitelists the
// deployed collaterals.
func newDaemon(ctx context.Context) (*daemon, error) {
	var (
		repoManager ports.RepoManager
		chainStore  chain.Store
		subStore    pubsub.SubscriptionStore
	)
	switch config.GetString(config.DBTypeKey) {
	case config.DBBadger:
		dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
		db, err := dbbadger.NewDbManager(dbDir, log.StandardLogger())
		if err != nil {
			return nil, err
		}
		repoManager = dbbadger.NewRepoManager(db)
		chainStore = chainbadger.NewStore(db)
		subStore = pubsub.NewBadgerStore(db.Store)
	default:
		repoManager = inmemory.NewRepoManager()
		chainStore = chaininmemory.NewStore()
		subStore = pubsub.NewInMemoryStore()
	}

	d := &daemon{
		repoManager: repoManager,
		host:        chain.NewHost(chainStore, config.GetAddress(config.DeployerAccountKey)),
		registry:    prometheus.NewRegistry(),
	}
	if err := d.setup(ctx, subStore); err != nil {
		d.close()
		return nil, err
	}
	return d, nil
}

func (d *daemon) setup(
	ctx context.Context, subStore pubsub.SubscriptionStore,
) error {
	if err := uow.NewUnitOfWork(d.host).Run(
		ctx, func(ctx context.Context) (err error) {
			d.deployment, err = d.host.Deploy(ctx, config.GetCollaterals())
			return
		},
	); err != nil {
		return fmt.Errorf("deploying contracts: %w", err)
	}
	log.Debugf(
		"token manager %s, reserve %s, formula %s",
		d.deployment.TokenManager.Hex(), d.deployment.Reserve.Hex(),
		d.deployment.Formula.Hex(),
	)

	admin := config.GetAddress(config.AdminAccountKey)
	perms := make([]acl.Permission, 0)
	for _, op := range acl.AdminOps() {
		perms = append(perms, acl.Permission{Account: admin, Op: op})
	}
	aclSvc, err := acl.NewACL(perms...)
	if err != nil {
		return err
	}

	d.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsPublisher, err := metrics.NewPublisher(d.registry)
	if err != nil {
		return err
	}

	d.pubsub, err = pubsub.NewService(
		subStore, config.GetDuration(config.WebhookTimeoutKey),
	)
	if err != nil {
		return err
	}
	webhookSvc, err := pubsubapp.NewService(d.pubsub, aclSvc)
	if err != nil {
		return err
	}

	d.marketMaker, err = marketmaker.NewService(
		d.repoManager, d.host, aclSvc,
		pubsub.NewMultiPublisher(d.pubsub, metricsPublisher),
	)
	if err != nil {
		return err
	}
	if err := d.bootstrap(ctx, admin); err != nil {
		return err
	}

	var faucet httpinterface.Faucet
	if maxAmount := config.GetAmount(config.FaucetMaxAmountKey); !maxAmount.IsZero() {
		faucet = chain.NewFaucet(d.host, maxAmount)
	}

	secret := []byte(config.GetString(config.JWTSecretKey))
	if err := writeAdminToken(secret, admin); err != nil {
		return err
	}

	d.httpSvc, err = httpinterface.NewService(httpinterface.ServiceOpts{
		Address:         fmt.Sprintf(":%d", config.GetInt(config.HTTPListeningPortKey)),
		JWTSecret:       secret,
		OrdersPerSecond: config.GetInt(config.OrdersPerSecondKey),
		EnableProfiler:  config.GetBool(config.EnableProfilerKey),
		MarketMakerSvc:  d.marketMaker,
		WebhookSvc:      webhookSvc,
		ACL:             aclSvc,
		Ledger:          d.host,
		Faucet:          faucet,
		Registry:        d.registry,
	})
	return err
}

// bootstrap initializes the market maker with the deployed contracts and
// whitelists the deployed collaterals. It's a no-op if already initialized.
func (d *daemon) bootstrap(ctx context.Context, admin common.Address) error {
	svc := d.marketMaker
	if _, err := svc.GetInfo(ctx); !errors.Is(err, domain.ErrNotInitialized) {
		return err
	}

	if err := svc.Initialize(ctx, marketmaker.InitArgs{
		TokenManager: d.deployment.TokenManager,
		Formula:      d.deployment.Formula,
		Reserve:      d.deployment.Reserve,
		Beneficiary:  config.GetBeneficiary(),
		BuyFeePct:    config.GetAmount(config.BuyFeePctKey),
		SellFeePct:   config.GetAmount(config.SellFeePctKey),
		Gated:        config.GetBool(config.GatedKey),
	}); err != nil {
		return fmt.Errorf("initializing market maker: %w", err)
	}

	for _, name := range sortedNames(d.deployment.Collaterals) {
		collateral := d.deployment.Collaterals[name]
		if err := svc.AddCollateralToken(ctx, admin, marketmaker.CollateralArgs{
			Collateral:     collateral,
			VirtualSupply:  config.GetAmount(config.VirtualSupplyKey),
			VirtualBalance: config.GetAmount(config.VirtualBalanceKey),
			ReserveRatio:   uint32(config.GetInt(config.ReserveRatioKey)),
		}); err != nil {
			return fmt.Errorf("whitelisting %s: %w", name, err)
		}
		log.Infof("whitelisted collateral %s at %s", name, collateral.Hex())
	}

	log.Info("market maker initialized")
	return nil
}

func (d *daemon) close() {
	if d.pubsub != nil {
		d.pubsub.Close()
	}
	d.host.Close()
	d.repoManager.Close()
}

// writeAdminToken writes a bearer token for the admin account to the
// datadir, readable only by the owner.
func writeAdminToken(secret []byte, admin common.Address) error {
	token, err := httpinterface.IssueToken(
		secret, admin, config.GetDuration(config.AdminTokenTTLKey),
	)
	if err != nil {
		return err
	}
	path := filepath.Join(config.GetDatadir(), config.AdminTokenFile)
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing admin token: %w", err)
	}
	log.Infof("admin token written to %s", path)
	return nil
}

// sortedNames returns the keys of the given map in lexicographic order.
func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
