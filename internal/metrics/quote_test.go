package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestQuoteMetricsCountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQuoteMetrics(reg)

	m.IncSubmission(OutcomeSent)
	m.IncSubmission(OutcomeSent)
	m.IncSubmission(OutcomeInvalid)
	m.IncSubmission("")
	m.IncEstimate("Narrative Film")
	m.IncEstimate("")
	m.IncRateLimited()
	m.ObserveTransport("resend", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeSent)); got != 2 {
		t.Fatalf("sent=%v, want 2", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeInvalid)); got != 1 {
		t.Fatalf("invalid=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("unknown=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.estimates.WithLabelValues("none")); got != 1 {
		t.Fatalf("estimates none=%v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rateLimited); got != 1 {
		t.Fatalf("rateLimited=%v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Fatalf("duration series=%d, want 1", n)
	}
}

func TestQuoteMetricsNilSafe(t *testing.T) {
	var m *QuoteMetrics
	m.IncSubmission(OutcomeSent)
	m.ObserveTransport("form", time.Second)
	m.IncEstimate("x")
	m.IncRateLimited()

	unregistered := NewQuoteMetrics(nil)
	unregistered.IncSubmission(OutcomeSent)
	unregistered.IncRateLimited()
}
