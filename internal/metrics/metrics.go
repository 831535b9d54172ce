// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the entity store.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackboard/backend/internal/store"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry       *prometheus.Registry
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	storeOps       *prometheus.CounterVec
	storeDuration  *prometheus.HistogramVec
	storeConflicts prometheus.Counter
}

// New creates a registry with Go runtime, process, HTTP and store collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hackboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackboard",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Entity store operations by key, operation and outcome.",
		}, []string{"key", "op", "outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hackboard",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Entity store operation latency.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		storeConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hackboard",
			Subsystem: "store",
			Name:      "update_conflicts_total",
			Help:      "Updates abandoned after exhausting optimistic retries.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.storeOps,
		m.storeDuration,
		m.storeConflicts,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// InstrumentBackend wraps b so every call is counted and timed.
func (m *Metrics) InstrumentBackend(b store.Backend) store.Backend {
	return &instrumentedBackend{next: b, m: m}
}

type instrumentedBackend struct {
	next store.Backend
	m    *Metrics
}

func (b *instrumentedBackend) observe(key, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, store.ErrConflict) {
			b.m.storeConflicts.Inc()
		}
	}
	b.m.storeOps.WithLabelValues(key, op, outcome).Inc()
	b.m.storeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (b *instrumentedBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	v, ok, err := b.next.Get(ctx, key)
	b.observe(key, "get", start, err)
	return v, ok, err
}

func (b *instrumentedBackend) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := b.next.Put(ctx, key, value)
	b.observe(key, "put", start, err)
	return err
}

func (b *instrumentedBackend) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	start := time.Now()
	err := b.next.Update(ctx, key, fn)
	b.observe(key, "update", start, err)
	return err
}

func (b *instrumentedBackend) Close() error { return b.next.Close() }
