// Package metrics exposes Prometheus instruments for evaluations and HTTP
// traffic, and runtime memory snapshots for the REPL status command.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Evaluation outcomes used as the status label.
const (
	StatusOK         = "ok"
	StatusParseError = "parse_error"
	StatusArithError = "arithmetic_error"
	StatusTimeout    = "timeout"
	StatusCanceled   = "canceled"
	StatusError      = "error"
)

// Recorder owns a private registry so that several recorders (tests, a
// server next to a REPL) never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	evaluations    *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	operandDigits  prometheus.Histogram
	activeRequests prometheus.Gauge
	httpRequests   *prometheus.CounterVec
}

// NewRecorder registers the bigcalc instruments plus the Go and process
// collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bigcalc_evaluations_total",
			Help: "Evaluated expressions by operator and outcome.",
		}, []string{"op", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bigcalc_evaluation_duration_seconds",
			Help:    "Time spent evaluating one expression.",
			Buckets: prometheus.ExponentialBuckets(0.000_01, 4, 12),
		}, []string{"op"}),
		operandDigits: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bigcalc_operand_digits",
			Help:    "Decimal digits of the larger operand.",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		}),
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bigcalc_active_requests",
			Help: "Evaluations currently in progress.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bigcalc_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
}

// Registry returns the registry backing r.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveEvaluation records one finished evaluation.
func (r *Recorder) ObserveEvaluation(op, status string, d time.Duration, digits int) {
	r.evaluations.WithLabelValues(op, status).Inc()
	if status == StatusOK {
		r.duration.WithLabelValues(op).Observe(d.Seconds())
	}
	if digits > 0 {
		r.operandDigits.Observe(float64(digits))
	}
}

func (r *Recorder) IncActive() { r.activeRequests.Inc() }
func (r *Recorder) DecActive() { r.activeRequests.Dec() }

// ObserveHTTP counts one HTTP response.
func (r *Recorder) ObserveHTTP(route string, code int) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
