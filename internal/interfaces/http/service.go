// Package httpinterface exposes the market maker over a JSON HTTP API.
// Callers identify themselves with a bearer JWT whose subject is their
// account.
package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/acl"
	interfaces "github.com/tdex-network/tdex-bondingcurve/internal/interfaces"
	"go.uber.org/ratelimit"
)

const shutdownTimeout = 5 * time.Second

// Ledger gives read access to the balances of the host.
type Ledger interface {
	BalanceOf(ctx context.Context, asset, account common.Address) (*uint256.Int, error)
}

// Faucet funds accounts on development networks.
type Faucet interface {
	Fund(ctx context.Context, asset, account common.Address, amount *uint256.Int) error
}

type ServiceOpts struct {
	Address   string
	JWTSecret []byte
	// OrdersPerSecond caps the rate of order requests, 0 for no limit.
	OrdersPerSecond int
	EnableProfiler  bool

	MarketMakerSvc *marketmaker.Service
	WebhookSvc     *pubsub.Service
	ACL            *acl.ACL
	Ledger         Ledger
	// Faucet is optional, the faucet endpoint is not served if nil.
	Faucet Faucet
	// Registry is optional, metrics are not served if nil.
	Registry *prometheus.Registry
}

func (o ServiceOpts) validate() error {
	if len(o.JWTSecret) <= 0 {
		return fmt.Errorf("missing jwt secret")
	}
	if o.OrdersPerSecond < 0 {
		return fmt.Errorf("orders per second must not be negative")
	}
	if o.MarketMakerSvc == nil {
		return fmt.Errorf("market maker app service must not be null")
	}
	if o.WebhookSvc == nil {
		return fmt.Errorf("webhook app service must not be null")
	}
	if o.ACL == nil {
		return fmt.Errorf("acl must not be null")
	}
	if o.Ledger == nil {
		return fmt.Errorf("ledger must not be null")
	}
	return nil
}

type service struct {
	server *http.Server
}

// NewService returns the HTTP interface listening on opts.Address.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	handler, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}
	return &service{&http.Server{
		Addr:              opts.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}, nil
}

func (s *service) Start() error {
	errC := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	// give the listener a moment to fail on busy ports.
	select {
	case err := <-errC:
		return err
	case <-time.After(100 * time.Millisecond):
	}

	log.Infof("http interface: listening on %s", s.server.Addr)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http interface: failed to shutdown gracefully")
		return
	}
	log.Info("http interface: stopped")
}

// NewHandler returns the router serving the API.
func NewHandler(opts ServiceOpts) (http.Handler, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	h := &handler{
		mm:       opts.MarketMakerSvc,
		webhooks: opts.WebhookSvc,
		acl:      opts.ACL,
		ledger:   opts.Ledger,
		faucet:   opts.Faucet,
		secret:   opts.JWTSecret,
	}

	r := mux.NewRouter()
	r.Use(logger)
	if opts.Registry != nil {
		metrics, err := newRequestMetrics(opts.Registry)
		if err != nil {
			return nil, err
		}
		r.Use(metrics.instrument)
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	if opts.EnableProfiler {
		r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(authenticate(opts.JWTSecret))

	v1.HandleFunc("/info", h.getInfo).Methods(http.MethodGet)
	v1.HandleFunc("/open", h.open).Methods(http.MethodPost)
	v1.HandleFunc("/beneficiary", h.updateBeneficiary).Methods(http.MethodPut)
	v1.HandleFunc("/formula", h.updateFormula).Methods(http.MethodPut)
	v1.HandleFunc("/fees", h.updateFees).Methods(http.MethodPut)

	v1.HandleFunc("/collaterals", h.listCollaterals).Methods(http.MethodGet)
	v1.HandleFunc("/collaterals", h.addCollateral).Methods(http.MethodPost)
	v1.HandleFunc("/collaterals/{collateral}", h.getCollateral).Methods(http.MethodGet)
	v1.HandleFunc("/collaterals/{collateral}", h.updateCollateral).Methods(http.MethodPut)
	v1.HandleFunc("/collaterals/{collateral}", h.removeCollateral).Methods(http.MethodDelete)
	v1.HandleFunc("/collaterals/{collateral}/price", h.staticPrice).Methods(http.MethodGet)
	v1.HandleFunc("/collaterals/{collateral}/preview/{side}", h.previewOrder).
		Methods(http.MethodGet)

	orders := v1.PathPrefix("/orders").Subrouter()
	if opts.OrdersPerSecond > 0 {
		orders.Use(throttle(ratelimit.New(opts.OrdersPerSecond)))
	}
	orders.HandleFunc("/buy", h.makeBuyOrder).Methods(http.MethodPost)
	orders.HandleFunc("/sell", h.makeSellOrder).Methods(http.MethodPost)
	orders.HandleFunc("/approve-and-call", h.approveAndCall).Methods(http.MethodPost)

	v1.HandleFunc("/balances/{account}", h.getBalance).Methods(http.MethodGet)
	if opts.Faucet != nil {
		v1.HandleFunc("/faucet", h.fund).Methods(http.MethodPost)
	}

	v1.HandleFunc("/webhooks", h.listWebhooks).Methods(http.MethodGet)
	v1.HandleFunc("/webhooks", h.addWebhook).Methods(http.MethodPost)
	v1.HandleFunc("/webhooks/{id}", h.removeWebhook).Methods(http.MethodDelete)

	v1.HandleFunc("/permissions/{account}", h.listPermissions).Methods(http.MethodGet)
	v1.HandleFunc("/permissions", h.grant).Methods(http.MethodPost)
	v1.HandleFunc("/permissions", h.revoke).Methods(http.MethodDelete)
	v1.HandleFunc("/tokens", h.issueToken).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
	})

	return r, nil
}
