// Package monitoring exposes Prometheus metrics for wallet operations and
// HTTP traffic.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	walletOperationsTotal   *prometheus.CounterVec
	walletOperationDuration *prometheus.HistogramVec
	activeWallets           prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		walletOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ewl_wallet_operations_total",
				Help: "Total number of wallet operations by outcome",
			},
			[]string{"operation", "result"},
		),
		walletOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ewl_wallet_operation_duration_seconds",
				Help:    "Wallet operation duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation"},
		),
		activeWallets: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ewl_active_wallets",
				Help: "Number of stored wallets",
			},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ewl_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ewl_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordWalletOperation counts one wallet operation and observes its duration.
func (m *Metrics) RecordWalletOperation(operation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.walletOperationsTotal.WithLabelValues(operation, result).Inc()
	m.walletOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// WalletOpened increments the active wallet gauge.
func (m *Metrics) WalletOpened() {
	if m == nil {
		return
	}
	m.activeWallets.Inc()
}

// WalletClosed decrements the active wallet gauge.
func (m *Metrics) WalletClosed() {
	if m == nil {
		return
	}
	m.activeWallets.Dec()
}

// SetActiveWallets sets the active wallet gauge, e.g. after loading from storage.
func (m *Metrics) SetActiveWallets(n int) {
	if m == nil {
		return
	}
	m.activeWallets.Set(float64(n))
}

// RecordHTTPRequest counts one served request. route is the matched route
// pattern, not the raw path.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
