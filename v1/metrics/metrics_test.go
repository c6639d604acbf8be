package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/peek/v1/observability"
)

func TestObserveOperationCountsByStatus(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{Component: "redis", Operation: "hset", Duration: time.Millisecond})
	m.ObserveOperation(observability.OperationContext{Component: "redis", Operation: "hset", Duration: time.Millisecond})
	m.ObserveOperation(observability.OperationContext{Component: "redis", Operation: "hset", Error: errors.New("down")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("redis", "hset", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("redis", "hset", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.operationDuration))
}

func TestResultsEventSetsEnabledViews(t *testing.T) {
	m := NewMetrics(Config{})

	m.ObserveOperation(observability.OperationContext{Component: "peek", Operation: "results", Size: 3})
	assert.Equal(t, 3.0, testutil.ToFloat64(m.enabledViews))

	// failed cycles leave the gauge untouched
	m.ObserveOperation(observability.OperationContext{Component: "peek", Operation: "results", Size: 0, Error: errors.New("boom")})
	assert.Equal(t, 3.0, testutil.ToFloat64(m.enabledViews))
}

func TestResultsEventObservesSize(t *testing.T) {
	m := NewMetrics(Config{})

	m.ObserveOperation(observability.OperationContext{
		Component: "peek",
		Operation: "results",
		Size:      2,
		Metadata:  map[string]interface{}{"metric_count": 5},
	})
	m.ObserveOperation(observability.OperationContext{Component: "peek", Operation: "results", Size: 1})

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "peek_results_size" {
			h := f.GetMetric()[0].GetHistogram()
			assert.Equal(t, uint64(1), h.GetSampleCount())
			assert.Equal(t, 5.0, h.GetSampleSum())
			return
		}
	}
	t.Fatal("peek_results_size not registered")
}

func TestDefaults(t *testing.T) {
	m := NewMetrics(Config{})
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
	assert.Equal(t, DefaultNamespace, m.namespace)
}

func TestCreateCounterUsesNamespace(t *testing.T) {
	m := NewMetrics(Config{Namespace: "checkout", ServiceName: "svc"})

	c := m.CreateCounter("cache_hits_total", "cache hits", []string{"view"})
	c.WithLabelValues("db").Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "checkout_cache_hits_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			labels := map[string]string{}
			for _, l := range f.GetMetric()[0].GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			assert.Equal(t, "svc", labels["service"])
		}
	}
	assert.True(t, found)
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "svc"})
	m.ObserveOperation(observability.OperationContext{Component: "peek", Operation: "save"})

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `peek_operations_total{component="peek",operation="save",service="svc",status="success"} 1`))
}

func TestCreateHistogramAndGauge(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "svc"})

	hist := m.CreateHistogram("view_duration_seconds", "view duration", []string{"view"}, []float64{0.01, 0.1, 1})
	hist.WithLabelValues("db").Observe(0.05)
	hist.WithLabelValues("db").Observe(0.5)

	gauge := m.CreateGauge("requests_tracked", "tracked requests", []string{"adapter"})
	gauge.WithLabelValues("memory").Set(4)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	byName := map[string]bool{}
	for _, f := range families {
		byName[f.GetName()] = true
		switch f.GetName() {
		case "peek_view_duration_seconds":
			h := f.GetMetric()[0].GetHistogram()
			assert.Equal(t, uint64(2), h.GetSampleCount())
			assert.Len(t, h.GetBucket(), 3)
		case "peek_requests_tracked":
			assert.Equal(t, 4.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, byName["peek_view_duration_seconds"])
	assert.True(t, byName["peek_requests_tracked"])

	var collector MetricsCollector = m
	assert.Panics(t, func() {
		collector.CreateGauge("requests_tracked", "duplicate", []string{"adapter"})
	})
}
