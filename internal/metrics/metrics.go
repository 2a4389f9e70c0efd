package metrics

import (
	"net/http"
	"strconv"
	"time"

	"edutoken-backend/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API and the ledger.
// All methods are safe on a nil receiver so handlers can run without metrics.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ledgerOps       *prometheus.CounterVec
	capitalRaised   prometheus.Counter
	paymentsMade    prometheus.Counter
	activations     prometheus.Counter
}

// New creates a private registry and registers every collector on it.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edutoken_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edutoken_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edutoken_ledger_operations_total",
			Help: "Ledger operations by name and result (ok or an error kind)",
		}, []string{"operation", "result"}),
		capitalRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edutoken_capital_committed_total",
			Help: "Capital committed by investments, in minor units",
		}),
		paymentsMade: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edutoken_payments_made_total",
			Help: "Payments settled against income reports, in minor units",
		}),
		activations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edutoken_isa_activations_total",
			Help: "ISAs that reached full funding",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.ledgerOps,
		m.capitalRaised,
		m.paymentsMade,
		m.activations,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is used by tests to gather values.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, route, code).Inc()
}

// ObserveLedger counts one ledger operation. Ledger errors are labelled by kind;
// anything else is "internal".
func (m *Metrics) ObserveLedger(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "internal"
		if le, ok := domain.AsLedgerError(err); ok {
			result = le.Kind
		}
	}
	m.ledgerOps.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) AddCapital(amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.capitalRaised.Add(float64(amount))
}

func (m *Metrics) AddPayment(amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.paymentsMade.Add(float64(amount))
}

func (m *Metrics) IncActivations() {
	if m == nil {
		return
	}
	m.activations.Inc()
}
