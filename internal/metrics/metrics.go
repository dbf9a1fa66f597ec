// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the application's Prometheus metrics.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	pairsLinked     prometheus.Counter
	tasksCompleted  prometheus.Counter
	turnsPassed     prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twinflame_http_requests_total",
			Help: "HTTP responses by method and status code",
		}, []string{"method", "status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twinflame_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		pairsLinked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twinflame_pairs_linked_total",
			Help: "Successful partner links",
		}),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twinflame_tasks_completed_total",
			Help: "Daily task completions recorded",
		}),
		turnsPassed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twinflame_turns_passed_total",
			Help: "Truth-or-dare turns passed to the partner",
		}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.pairsLinked,
		c.tasksCompleted,
		c.turnsPassed,
	)

	return c
}

// RecordPairLinked increments the pair-link counter.
func (c *Collector) RecordPairLinked() { c.pairsLinked.Inc() }

// RecordTaskCompleted increments the completion counter.
func (c *Collector) RecordTaskCompleted() { c.tasksCompleted.Inc() }

// RecordTurnPassed increments the turn counter.
func (c *Collector) RecordTurnPassed() { c.turnsPassed.Inc() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes the connection takeover through to the wrapped writer so
// WebSocket upgrades keep working behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request counts and latency per response.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		c.requestDuration.Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
