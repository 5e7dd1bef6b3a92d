package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

// Ledger agrupa os coletores do serviço de liquidação.
type Ledger struct {
	Ops       *prometheus.CounterVec
	OpLatency *prometheus.HistogramVec
	Flushed   prometheus.Counter
	Errors    *prometheus.CounterVec
	Poisoned  prometheus.Gauge
}

// NewLedger cria e registra os coletores no registerer informado.
func NewLedger(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_ops_total", Help: "mutações do ledger por operação e resultado",
		}, []string{"op", "result"}),
		OpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "ledger_op_duration_seconds", Help: "duração das mutações (inclui espera pelo lock)",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"op"}),
		Flushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_journal_records_flushed_total", Help: "registros gravados no journal",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_flush_errors_total", Help: "erros do flusher por estágio",
		}, []string{"stage"}),
		Poisoned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_poisoned", Help: "1 quando o engine está envenenado",
		}),
	}
	reg.MustRegister(m.Ops, m.OpLatency, m.Flushed, m.Errors, m.Poisoned)
	return m
}

// Observe é o observer do engine: result é "ok" ou o nome do erro.
func (m *Ledger) Observe(op string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = domain.Kind(err)
	}
	m.Ops.WithLabelValues(op, result).Inc()
	m.OpLatency.WithLabelValues(op).Observe(d.Seconds())
	if result == "LedgerUnavailable" {
		m.Poisoned.Set(1)
	}
}
