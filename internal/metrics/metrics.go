// Package metrics exposes Prometheus metrics for pool activity.
package metrics

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spacelp"

// Operation status labels.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
)

// Metrics holds the pool collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	operations   *prometheus.CounterVec
	reserves     *prometheus.GaugeVec
	shareSupply  prometheus.Gauge
	swapVolume   *prometheus.CounterVec
	feesRetained *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "operations_total",
				Help:      "Pool and router operations by name and outcome",
			},
			[]string{"operation", "status"},
		),
		reserves: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "reserves",
				Help:      "Recognized pool reserves in base units",
			},
			[]string{"asset"},
		),
		shareSupply: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "share_supply",
				Help:      "Outstanding pool shares",
			},
		),
		swapVolume: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "swap_volume_total",
				Help:      "Swap input volume in base units",
			},
			[]string{"asset"},
		),
		feesRetained: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "fees_retained_total",
				Help:      "Swap fees retained in reserves in base units",
			},
			[]string{"asset"},
		),
	}
	reg.MustRegister(m.operations, m.reserves, m.shareSupply, m.swapVolume, m.feesRetained)
	return m
}

func (m *Metrics) ObserveOperation(operation, status string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) SetReserves(eth, spc *uint256.Int) {
	if m == nil {
		return
	}
	m.reserves.WithLabelValues("eth").Set(toFloat(eth))
	m.reserves.WithLabelValues("spc").Set(toFloat(spc))
}

func (m *Metrics) SetShareSupply(supply *uint256.Int) {
	if m == nil {
		return
	}
	m.shareSupply.Set(toFloat(supply))
}

func (m *Metrics) AddSwap(asset string, amountIn, fee *uint256.Int) {
	if m == nil {
		return
	}
	m.swapVolume.WithLabelValues(asset).Add(toFloat(amountIn))
	m.feesRetained.WithLabelValues(asset).Add(toFloat(fee))
}

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
