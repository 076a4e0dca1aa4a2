package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	operations    *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	mints         prometheus.Counter
	mintVolume    prometheus.Counter
	splits        *prometheus.CounterVec
	disbursements *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "celebmint_operations_total",
				Help: "Ledger operations by name and outcome.",
			}, []string{"operation", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "celebmint_operation_duration_seconds",
				Help:    "Wall time spent executing ledger operations.",
				Buckets: prometheus.DefBuckets,
			}, []string{"operation"}),
			mints: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "celebmint_mints_total",
				Help: "Number of assets minted.",
			}),
			mintVolume: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "celebmint_mint_volume_units",
				Help: "Primary sale value settled, in atomic units (float approximation).",
			}),
			splits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "celebmint_splitter_payments_total",
				Help: "Splitter payments settled by royalty window state.",
			}, []string{"window"}),
			disbursements: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "celebmint_disbursement_failures_total",
				Help: "Disbursements rolled back because a payee refused funds.",
			}, []string{"source"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.operations,
			ledgerRegistry.latency,
			ledgerRegistry.mints,
			ledgerRegistry.mintVolume,
			ledgerRegistry.splits,
			ledgerRegistry.disbursements,
		)
	})
	return ledgerRegistry
}

func (m *LedgerMetrics) ObserveOperation(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *LedgerMetrics) ObserveMint(value float64) {
	if m == nil {
		return
	}
	m.mints.Inc()
	if value > 0 {
		m.mintVolume.Add(value)
	}
}

func (m *LedgerMetrics) ObserveSplit(window string) {
	if m == nil {
		return
	}
	if window == "" {
		window = "unknown"
	}
	m.splits.WithLabelValues(window).Inc()
}

func (m *LedgerMetrics) IncDisbursementFailure(source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.disbursements.WithLabelValues(source).Inc()
}
