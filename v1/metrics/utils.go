package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/peek/v1/observability"
)

// ObserveOperation records an operation event emitted by peek, an adapter or an
// infrastructure client.
// A successful "peek"/"results" event also updates the enabled views gauge from
// Size and observes its "metric_count" metadata in the results size histogram.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	m.operationsTotal.WithLabelValues(op.Component, op.Operation, op.Status()).Inc()
	m.operationDuration.WithLabelValues(op.Component, op.Operation).Observe(op.Duration.Seconds())

	if op.Component == "peek" && op.Operation == "results" && op.Error == nil {
		m.SetEnabledViews(int(op.Size))
		if count, ok := op.Metadata["metric_count"].(int); ok {
			m.resultsSize.Observe(float64(count))
		}
	}
}

// SetEnabledViews sets the enabled views gauge.
func (m *Metrics) SetEnabledViews(n int) {
	m.enabledViews.Set(float64(n))
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
