package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSent             = "sent"
	OutcomeInvalid          = "invalid"
	OutcomeTransportFailure = "transport_failure"
)

// QuoteMetrics records quote request traffic. A nil *QuoteMetrics is valid
// and records nothing.
type QuoteMetrics struct {
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	estimates   *prometheus.CounterVec
	rateLimited prometheus.Counter
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_submissions_total",
		Help: "Quote request submissions by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_transport_duration_seconds",
		Help:    "Time spent delivering quote requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport"})
	estimates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_estimates_total",
		Help: "Estimate computations by package.",
	}, []string{"package"})
	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quote_rate_limited_total",
		Help: "Quote requests rejected by the rate limiter.",
	})
	reg.MustRegister(submissions, duration, estimates, rateLimited)
	return &QuoteMetrics{
		submissions: submissions,
		duration:    duration,
		estimates:   estimates,
		rateLimited: rateLimited,
	}
}

func (m *QuoteMetrics) IncSubmission(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveTransport records how long the named transport took to deliver.
func (m *QuoteMetrics) ObserveTransport(transport string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(transport)).Observe(d.Seconds())
}

func (m *QuoteMetrics) IncEstimate(pkg string) {
	if m == nil || m.estimates == nil {
		return
	}
	if pkg == "" {
		pkg = "none"
	}
	m.estimates.WithLabelValues(pkg).Inc()
}

func (m *QuoteMetrics) IncRateLimited() {
	if m == nil || m.rateLimited == nil {
		return
	}
	m.rateLimited.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
