// Package metrics exports coordinator operations to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vecagent"

// Collector implements agent.Recorder on top of Prometheus collectors.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	operations *prometheus.CounterVec
	results    prometheus.Histogram
	built      prometheus.Counter
	pending    prometheus.Gauge
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Index operations processed",
		}, []string{"op", "status"}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Neighbors returned per search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		built: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "built_vectors_total",
			Help:      "Vectors materialized into the index",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_vectors",
			Help:      "Vectors left pending after the last build",
		}),
	}
	reg.MustRegister(c.opLatency, c.operations, c.results, c.built, c.pending)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	c.operations.WithLabelValues(op, s).Inc()
}

// RecordInsert implements agent.Recorder.
func (c *Collector) RecordInsert(d time.Duration, err error) {
	c.observe("insert", d, err)
}

// RecordSearch implements agent.Recorder.
func (c *Collector) RecordSearch(k, found int, d time.Duration, err error) {
	c.observe("search", d, err)
	if err == nil {
		c.results.Observe(float64(found))
	}
}

// RecordBuild implements agent.Recorder.
func (c *Collector) RecordBuild(built, pending int, d time.Duration, err error) {
	c.observe("build", d, err)
	c.built.Add(float64(built))
	c.pending.Set(float64(pending))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
