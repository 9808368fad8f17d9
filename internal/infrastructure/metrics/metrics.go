// Package metrics exposes the activity of the market maker as prometheus
// metrics, updated from its events.
package metrics

import (
	"context"
	"strings"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

const namespace = "bonding"

const (
	sideBuy  = "buy"
	sideSell = "sell"
)

// Publisher is a ports.EventPublisher counting events and order volumes.
// Amounts are tracked in base units, as floats.
type Publisher struct {
	events           *prometheus.CounterVec
	orders           *prometheus.CounterVec
	collateralVolume *prometheus.CounterVec
	bondVolume       *prometheus.CounterVec
	fees             *prometheus.CounterVec
}

// NewPublisher registers the market maker metrics to reg.
func NewPublisher(reg prometheus.Registerer) (*Publisher, error) {
	p := &Publisher{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Number of market maker events by type.",
		}, []string{"event"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Number of executed orders by side and collateral.",
		}, []string{"side", "collateral"}),
		collateralVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collateral_volume_total",
			Help:      "Collateral deposited by buys and paid out by sells.",
		}, []string{"side", "collateral"}),
		bondVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bond_volume_total",
			Help:      "Bonded tokens minted by buys and burnt by sells.",
		}, []string{"side", "collateral"}),
		fees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_total",
			Help:      "Collateral fees paid to the beneficiary.",
		}, []string{"side", "collateral"}),
	}

	for _, c := range []prometheus.Collector{
		p.events, p.orders, p.collateralVolume, p.bondVolume, p.fees,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Publisher) PublishEvent(_ context.Context, event domain.Event) error {
	p.events.WithLabelValues(string(event.Type())).Inc()

	switch e := event.(type) {
	case domain.MakeBuyOrderEvent:
		collateral := strings.ToLower(e.Collateral.Hex())
		p.orders.WithLabelValues(sideBuy, collateral).Inc()
		p.collateralVolume.WithLabelValues(sideBuy, collateral).Add(toFloat(e.DepositAmount))
		p.bondVolume.WithLabelValues(sideBuy, collateral).Add(toFloat(e.ReturnAmount))
		p.fees.WithLabelValues(sideBuy, collateral).Add(toFloat(e.Fee))
	case domain.MakeSellOrderEvent:
		collateral := strings.ToLower(e.Collateral.Hex())
		p.orders.WithLabelValues(sideSell, collateral).Inc()
		p.collateralVolume.WithLabelValues(sideSell, collateral).Add(toFloat(e.ReturnAmount))
		p.bondVolume.WithLabelValues(sideSell, collateral).Add(toFloat(e.SellAmount))
		p.fees.WithLabelValues(sideSell, collateral).Add(toFloat(e.Fee))
	}
	return nil
}

func toFloat(n *uint256.Int) float64 {
	if n == nil {
		return 0
	}
	return decimal.NewFromBigInt(n.ToBig(), 0).InexactFloat64()
}
