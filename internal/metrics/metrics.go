package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	prefix = "qelm"

	labelMethod = "method"
	labelSolver = "solver"
)

// Metrics collects minimization statistics.
type Metrics struct {
	runs            *prometheus.CounterVec
	runsFailed      *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	literals        *prometheus.HistogramVec
	primes          prometheus.Histogram
	coverSolves     *prometheus.CounterVec
	heuristicPasses prometheus.Counter
	verifyFailures  prometheus.Counter
}

// NewMetrics returns a Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "outputs_minimized_total",
			Help:      "How many single-output functions have been minimized.",
		}, []string{labelMethod}),
		runsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "outputs_failed_total",
			Help:      "How many single-output minimizations returned an error.",
		}, []string{labelMethod}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "output_duration_seconds",
			Help:      "Time spent minimizing one output.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{labelMethod}),
		literals: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "cover_literals",
			Help:      "Literal count of minimized covers.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{labelMethod}),
		primes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "prime_implicants",
			Help:      "Prime implicants found by the exact minimizer.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
		coverSolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "cover_solves_total",
			Help:      "Residual covering problems solved, by solver.",
		}, []string{labelSolver}),
		heuristicPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "heuristic_passes_total",
			Help:      "Expand, reduce and extract passes run by the heuristic minimizer.",
		}),
		verifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "verify_failures_total",
			Help:      "Covers rejected by verification.",
		}),
	}
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.runs.Collect(ch)
	m.runsFailed.Collect(ch)
	m.runDuration.Collect(ch)
	m.literals.Collect(ch)
	m.primes.Collect(ch)
	m.coverSolves.Collect(ch)
	m.heuristicPasses.Collect(ch)
	m.verifyFailures.Collect(ch)
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.runs.Describe(ch)
	m.runsFailed.Describe(ch)
	m.runDuration.Describe(ch)
	m.literals.Describe(ch)
	m.primes.Describe(ch)
	m.coverSolves.Describe(ch)
	m.heuristicPasses.Describe(ch)
	m.verifyFailures.Describe(ch)
}

func (m *Metrics) OutputMinimized(method string, d time.Duration, literals int) {
	m.runs.WithLabelValues(method).Inc()
	m.runDuration.WithLabelValues(method).Observe(d.Seconds())
	m.literals.WithLabelValues(method).Observe(float64(literals))
}

func (m *Metrics) OutputFailed(method string) {
	m.runsFailed.WithLabelValues(method).Inc()
}

func (m *Metrics) PrimesFound(n int) {
	m.primes.Observe(float64(n))
}

func (m *Metrics) CoverSolved(solver string) {
	m.coverSolves.WithLabelValues(solver).Inc()
}

func (m *Metrics) HeuristicPasses(n int) {
	m.heuristicPasses.Add(float64(n))
}

func (m *Metrics) VerifyFailed() {
	m.verifyFailures.Inc()
}

// Registry returns a registry holding m and the Go runtime collector.
func (m *Metrics) Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), m)
	return reg
}

// Handler serves the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
