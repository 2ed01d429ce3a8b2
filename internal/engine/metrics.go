package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько времени заняла полная проверка действия
	CheckDuration *prometheus.HistogramVec

	// Traffic: общее кол-во проверок гейта
	ChecksTotal *prometheus.CounterVec

	// Вердикты валидаторов по узлам (satisfied/unsatisfied/unknown)
	ValidatorResults *prometheus.CounterVec

	// Сколько раз поднималась ремедиация
	AutofixTotal *prometheus.CounterVec

	// Кэш ответов коллабораторов
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Saturation: состояние Circuit Breaker (0 - ок, 1 - выбило)
	BreakerState prometheus.Gauge

	// Заполненность буфера телеметрии (backpressure)
	BufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - без регистратора метрики живут в локальном реестре
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		CheckDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gate_check_duration_seconds",
			Help:    "Histogram of full gate check latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"action", "result"}),

		ChecksTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gate_checks_total",
			Help: "Total number of gate checks.",
		}, []string{"action"}),

		ValidatorResults: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gate_validator_results_total",
			Help: "Validator verdicts by requirement node.",
		}, []string{"requirement", "status"}),

		AutofixTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gate_autofix_total",
			Help: "Remediation UIs surfaced by requirement node.",
		}, []string{"requirement"}),

		CacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "gate_collab_cache_hits_total",
			Help: "Collaborator response cache hits.",
		}),

		CacheMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "gate_collab_cache_misses_total",
			Help: "Collaborator response cache misses.",
		}),

		BreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "gate_collab_circuit_breaker_state",
			Help: "Current state of the collaborator circuit breaker (0=closed, 1=open).",
		}),

		BufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "gate_telemetry_buffer_utilization",
			Help: "Current number of events in telemetry buffer.",
		}),
	}
}

// Адаптеры под узкие интерфейсы потребителей (clinicapi.Telemetry, telemetry.BufferGauge)

func (m *Metrics) CacheHit()  { m.CacheHits.Inc() }
func (m *Metrics) CacheMiss() { m.CacheMisses.Inc() }

func (m *Metrics) BreakerOpen(open bool) {
	if open {
		m.BreakerState.Set(1)
		return
	}
	m.BreakerState.Set(0)
}

func (m *Metrics) TelemetryBufferFill(n int) { m.BufferFill.Set(float64(n)) }
