package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing peek metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	// registerer wraps Registry with the constant service label.
	registerer prometheus.Registerer
	namespace  string

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	enabledViews      prometheus.Gauge
	resultsSize       prometheus.Histogram
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, wraps all metrics with a constant
// `service` label, registers the peek operation metrics and, when enabled, the
// Go/process collectors, and creates an HTTP server exposing /metrics.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "checkout",
//	    EnableDefaultCollectors: true,
//	})
//	p := peek.New(peekCfg, peek.WithObserver(m))
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrappedRegistry,
		namespace:  cfg.Namespace,
	}

	m.operationsTotal = createCounterVec(cfg.Namespace, "operations_total",
		"Total number of observed operations", []string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "operation_duration_seconds",
		"Duration of observed operations in seconds", []string{"component", "operation"}, prometheus.DefBuckets)
	m.enabledViews = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "views_enabled",
		Help:      "Number of enabled views in the last aggregation cycle",
	})

	m.resultsSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "results_size",
		Help:      "Number of metrics reported per results snapshot",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	wrappedRegistry.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.enabledViews,
		m.resultsSize,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
